// cmd/booking-gateway/main.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/example/tour-booking-gateway/internal/backend"
	"github.com/example/tour-booking-gateway/internal/booking"
	"github.com/example/tour-booking-gateway/internal/fx"
	"github.com/example/tour-booking-gateway/internal/gateway"
	"github.com/example/tour-booking-gateway/internal/handlers"
	"github.com/example/tour-booking-gateway/internal/ledger"
	"github.com/example/tour-booking-gateway/internal/queue"
	"github.com/example/tour-booking-gateway/internal/store"
	m "github.com/example/tour-booking-gateway/pkg/metrics"
)

const serviceName = "booking-gateway"

type config struct {
	HTTPAddr          string
	BackendURL        string
	GatewayPublicKey  string
	BaseCurrency      string
	BillingCurrency   string
	ChildDiscountRate float64
	FxAPIURL          string
	FxAPIKey          string
	FxTTL             time.Duration
	RedisAddr         string
	SessionTTL        time.Duration
	DatabaseURL       string
	KafkaBrokers      string
	KafkaTopic        string
}

func loadConfig() config {
	return config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		BackendURL:        getenv("BACKEND_URL", "http://localhost:4000/graphql"),
		GatewayPublicKey:  getenv("GATEWAY_PUBLIC_KEY", ""),
		BaseCurrency:      getenv("BASE_CURRENCY", "USD"),
		BillingCurrency:   getenv("BILLING_CURRENCY", "GHS"),
		ChildDiscountRate: getenvFloat("CHILD_DISCOUNT_RATE", 0.3),
		FxAPIURL:          getenv("FX_API_URL", "https://api.exchangerate.host/latest"),
		FxAPIKey:          getenv("FX_API_KEY", ""),
		FxTTL:             getenvDuration("FX_TTL", time.Hour),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		SessionTTL:        getenvDuration("SESSION_TTL", 2*time.Hour),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		KafkaBrokers:      getenv("KAFKA_BROKERS", ""),
		KafkaTopic:        getenv("KAFKA_TOPIC", "bookings.confirmed"),
	}
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	be := backend.NewClient(cfg.BackendURL)
	fxSvc := fx.New(cfg.BaseCurrency, cfg.BillingCurrency,
		fx.NewHTTPProvider(cfg.FxAPIURL, cfg.FxAPIKey), cfg.FxTTL, nil)

	if cfg.GatewayPublicKey == "" {
		// payment-step entry will fail with CONFIGURATION; everything
		// before it still works
		log.Printf("WARN: GATEWAY_PUBLIC_KEY is not set, payments are disabled")
	}
	gw := gateway.New(be, cfg.GatewayPublicKey)

	var sessions store.Store
	if cfg.RedisAddr != "" {
		rs, err := store.NewRedisStore(store.RedisConfig{Addr: cfg.RedisAddr, TTL: cfg.SessionTTL})
		if err != nil {
			log.Fatalf("redis session store: %v", err)
		}
		defer rs.Close()
		sessions = rs
		log.Printf("session store: redis at %s (ttl %v)", cfg.RedisAddr, cfg.SessionTTL)
	} else {
		sessions = store.NewMemoryStore()
		log.Printf("session store: in-memory")
	}

	var ldg *ledger.Ledger
	if cfg.DatabaseURL != "" {
		var err error
		ldg, err = ledger.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("payment ledger: %v", err)
		}
		defer ldg.Close()
		log.Printf("payment ledger: postgres")
	}

	var bus *queue.Bus
	if cfg.KafkaBrokers != "" {
		bus = queue.New(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		log.Printf("event bus: kafka %s topic %s", cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	deps := handlers.Deps{
		Sessions:          sessions,
		FX:                fxSvc,
		Gateway:           gw,
		Submitter:         booking.NewSubmitter(be),
		Ledger:            ldg,
		Bus:               bus,
		BillingCurrency:   cfg.BillingCurrency,
		ChildDiscountRate: cfg.ChildDiscountRate,
	}

	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "service": serviceName, "ts": time.Now().UTC()})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", handlers.CreateSessionHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", handlers.GetSessionHandler(deps)).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/trip", handlers.TripHandler(deps)).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/travelers", handlers.TravelersHandler(deps)).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/contact", handlers.ContactHandler(deps)).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/next", handlers.NextHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/previous", handlers.PreviousHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/quote", handlers.QuoteHandler(deps)).Methods(http.MethodGet)
	api.HandleFunc("/fx/refresh", handlers.RefreshQuoteHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/payment", handlers.StartPaymentHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/payment/callback", handlers.PaymentCallbackHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/submit", handlers.SubmitHandler(deps)).Methods(http.MethodPost)
	api.HandleFunc("/admin/unsubmitted-payments", handlers.UnsubmittedPaymentsHandler(deps)).Methods(http.MethodGet)

	handler := cors.AllowAll().Handler(r)
	log.Printf("%s listening at %s", serviceName, cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, handler))
}

/*************** Metrics middleware ***************/
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		statusLabel := "FAILED"
		if rec.status >= 200 && rec.status < 400 {
			statusLabel = "SUCCESS"
		}
		m.IncRequest(serviceName, statusLabel, r.Method)
		m.ObserveDuration(serviceName, statusLabel, time.Since(start).Seconds())
	})
}

/******************** Utils ********************/
func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvFloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
