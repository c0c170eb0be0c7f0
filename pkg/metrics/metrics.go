// tour-booking-gateway/pkg/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Label "service" so one query can compare gateway vs worker
	BookingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "requests_total",
			Help:      "Total booking API requests per service",
		},
		[]string{"service", "status", "method"},
	)

	BookingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking",
			Name:      "request_duration_seconds",
			Help:      "Booking request duration per service",
			// buckets dense in the sub-second range
			Buckets: []float64{
				0.01, 0.02, 0.03, 0.05, 0.08, 0.12,
				0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5,
			},
		},
		[]string{"service", "status"},
	)

	PaymentStageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "payment_stage_total",
			Help:      "Payment orchestration outcomes per stage (FX, GATEWAY_INIT, GATEWAY_VERIFY, SUBMIT)",
		},
		[]string{"stage", "status"},
	)

	FxRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "fx_refresh_total",
			Help:      "FX quote refresh attempts by outcome source (live/fallback)",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(
		BookingRequestsTotal,
		BookingRequestDuration,
		PaymentStageTotal,
		FxRefreshTotal,
	)
}

// Helpers so handlers stay tidy
func IncRequest(service, status, method string) {
	BookingRequestsTotal.WithLabelValues(service, status, method).Inc()
}
func ObserveDuration(service, status string, seconds float64) {
	BookingRequestDuration.WithLabelValues(service, status).Observe(seconds)
}
func IncPaymentStage(stage, status string) {
	PaymentStageTotal.WithLabelValues(stage, status).Inc()
}
func IncFxRefresh(source string) {
	FxRefreshTotal.WithLabelValues(source).Inc()
}
