// internal/handlers/common.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/example/tour-booking-gateway/internal/booking"
	"github.com/example/tour-booking-gateway/internal/fx"
	"github.com/example/tour-booking-gateway/internal/gateway"
	"github.com/example/tour-booking-gateway/internal/ledger"
	"github.com/example/tour-booking-gateway/internal/queue"
	"github.com/example/tour-booking-gateway/internal/store"
	errs "github.com/example/tour-booking-gateway/pkg/errors"
)

// Deps wires every collaborator a handler can need. Ledger and Bus may be
// nil (both are no-ops then).
type Deps struct {
	Sessions  store.Store
	FX        *fx.Service
	Gateway   *gateway.Adapter
	Submitter *booking.Submitter
	Ledger    *ledger.Ledger
	Bus       *queue.Bus

	BillingCurrency   string
	ChildDiscountRate float64
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	code := errs.CodeOf(err)
	writeJSON(w, httpStatus(code), ErrorOut{Status: "FAILED", Code: code, Reason: err.Error()})
}

func httpStatus(code string) int {
	switch code {
	case errs.CodeValidation:
		return http.StatusBadRequest
	case errs.CodeNotFound:
		return http.StatusNotFound
	case errs.CodeConflict:
		return http.StatusConflict
	case errs.CodeUnverifiedPayment:
		return http.StatusPaymentRequired
	case errs.CodeInitialization, errs.CodeVerification, errs.CodeSubmission:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Wrap(errs.CodeValidation, "invalid request body", err)
	}
	return nil
}
