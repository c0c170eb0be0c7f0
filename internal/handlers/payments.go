// internal/handlers/payments.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/tour-booking-gateway/internal/fx"
	"github.com/example/tour-booking-gateway/internal/ledger"
	"github.com/example/tour-booking-gateway/internal/queue"
	"github.com/example/tour-booking-gateway/internal/session"
	errs "github.com/example/tour-booking-gateway/pkg/errors"
	m "github.com/example/tour-booking-gateway/pkg/metrics"
)

// QuoteHandler renders the session total in the billing currency using the
// synchronously available quote. Never blocks on the rate provider.
func QuoteHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		q := d.FX.CachedQuote()
		conv := fx.Convert(rec.Session.Pricing.TotalAmount, q)
		writeJSON(w, http.StatusOK, QuoteOut{Quote: q, Conversion: &conv})
	}
}

// RefreshQuoteHandler is the manual refresh affordance. A provider failure is
// absorbed: the response simply carries the cached or fallback quote.
func RefreshQuoteHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prev := d.FX.CachedQuote()
		q := d.FX.Refresh(r.Context())
		writeJSON(w, http.StatusOK, RefreshOut{Quote: q, Changed: fx.MaterialChange(prev, q)})
	}
}

// StartPaymentHandler opens a gateway attempt for the session total. The
// session must already be at the payment step; the billing amount is the
// FX-converted total.
func StartPaymentHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		if rec.Session.CurrentStep != session.StepPayment {
			writeErr(w, errs.New(errs.CodeConflict, "session is not at the payment step"))
			return
		}

		q := d.FX.CachedQuote()
		conv := fx.Convert(rec.Session.Pricing.TotalAmount, q)
		m.IncPaymentStage("FX", "SUCCESS")

		att, err := d.Gateway.Begin(r.Context(), rec.Session.Customer.Email, conv.AmountMinor, d.BillingCurrency, rec.Attempt)
		if att != nil {
			rec.Attempt = att
			if lerr := d.Ledger.RecordAttempt(r.Context(), rec.Session.ID, att); lerr != nil {
				log.Printf("[handlers] ledger record: %v", lerr)
			}
			if perr := d.Sessions.Put(r.Context(), rec.Session.ID, rec); perr != nil {
				writeErr(w, perr)
				return
			}
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PaymentOut{Attempt: att, Conversion: conv})
	}
}

// PaymentCallbackHandler receives the checkout widget's asynchronous result:
// a success event carrying the transaction reference, or a bare cancel.
// Success always goes through server-side verification before the session is
// allowed to mark the payment verified.
func PaymentCallbackHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		if rec.Attempt == nil {
			writeErr(w, errs.New(errs.CodeConflict, "no payment attempt is in progress"))
			return
		}

		var in CallbackIn
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, err)
			return
		}
		if in.Reference != "" && in.Reference != rec.Attempt.Reference {
			writeErr(w, errs.New(errs.CodeConflict, "callback reference does not match the active attempt"))
			return
		}

		switch in.Event {
		case "cancel":
			if err := d.Gateway.HandleCancel(rec.Attempt); err != nil {
				writeErr(w, err)
				return
			}
			if lerr := d.Ledger.RecordAttempt(r.Context(), rec.Session.ID, rec.Attempt); lerr != nil {
				log.Printf("[handlers] ledger record: %v", lerr)
			}
			if err := d.Sessions.Put(r.Context(), rec.Session.ID, rec); err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, PaymentOut{Attempt: rec.Attempt})

		case "success":
			res, verr := d.Gateway.HandleSuccess(r.Context(), rec.Attempt)
			if lerr := d.Ledger.RecordAttempt(r.Context(), rec.Session.ID, rec.Attempt); lerr != nil {
				log.Printf("[handlers] ledger record: %v", lerr)
			}
			if verr == nil {
				if err := rec.Session.MarkPaymentVerified(rec.Attempt.Reference); err != nil {
					writeErr(w, err)
					return
				}
				if lerr := d.Ledger.MarkVerified(r.Context(), rec.Attempt.Reference, res.AmountMinor, res.Currency); lerr != nil {
					log.Printf("[handlers] ledger verify: %v", lerr)
				}
			}
			if err := d.Sessions.Put(r.Context(), rec.Session.ID, rec); err != nil {
				writeErr(w, err)
				return
			}
			if verr != nil {
				writeErr(w, verr)
				return
			}
			writeJSON(w, http.StatusOK, PaymentOut{Attempt: rec.Attempt, Verification: &res})

		default:
			writeErr(w, errs.New(errs.CodeValidation, "event: must be \"success\" or \"cancel\""))
		}
	}
}

// SubmitHandler creates the booking record. On success the session is
// discarded; on rejection it is kept intact, verified reference included,
// so submission can be retried without re-paying.
func SubmitHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}

		record, err := d.Submitter.Submit(r.Context(), rec.Session)
		if err != nil {
			writeErr(w, err)
			return
		}

		if lerr := d.Ledger.MarkSubmitted(r.Context(), rec.Session.Payment.Reference, record.ID); lerr != nil {
			log.Printf("[handlers] ledger submit: %v", lerr)
		}
		if perr := d.Bus.PublishBookingConfirmed(r.Context(), queue.BookingConfirmed{
			BookingID:        record.ID,
			SessionID:        rec.Session.ID,
			TourID:           rec.Session.TourID,
			PaymentReference: rec.Session.Payment.Reference,
			TotalPrice:       rec.Session.Pricing.TotalAmount,
			Currency:         d.BillingCurrency,
			CustomerEmail:    rec.Session.Customer.Email,
			StartDate:        rec.Session.SelectedDate,
		}); perr != nil {
			log.Printf("[handlers] publish booking.confirmed: %v", perr)
		}
		if derr := d.Sessions.Delete(r.Context(), rec.Session.ID); derr != nil {
			log.Printf("[handlers] delete session: %v", derr)
		}

		writeJSON(w, http.StatusCreated, SubmitOut{Booking: record})
	}
}

// UnsubmittedPaymentsHandler lists verified payments that never produced a
// booking. Support retries submission from this view.
func UnsubmittedPaymentsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := d.Ledger.ListUnsubmitted(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		if rows == nil {
			rows = []ledger.AttemptRow{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"unsubmitted": rows})
	}
}
