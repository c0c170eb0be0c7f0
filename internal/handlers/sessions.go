// internal/handlers/sessions.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/example/tour-booking-gateway/internal/session"
	"github.com/example/tour-booking-gateway/internal/store"
	errs "github.com/example/tour-booking-gateway/pkg/errors"
)

// CreateSessionHandler opens a new wizard session for a tour.
func CreateSessionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in CreateSessionIn
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, err)
			return
		}
		if in.TourID == "" {
			writeErr(w, errs.New(errs.CodeValidation, "tour_id: required"))
			return
		}
		if in.DurationDays < 1 {
			writeErr(w, errs.New(errs.CodeValidation, "duration_days: must be at least 1"))
			return
		}
		if in.BaseAmount <= 0 {
			writeErr(w, errs.New(errs.CodeValidation, "base_amount: must be positive"))
			return
		}

		sess := session.New(uuid.NewString(), in.TourID, in.DurationDays, in.BaseAmount, d.ChildDiscountRate)
		rec := &store.Record{Session: sess}
		if err := d.Sessions.Put(r.Context(), sess.ID, rec); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, SessionOut{Session: sess})
	}
}

// GetSessionHandler returns the current session snapshot.
func GetSessionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionOut{Session: rec.Session, Attempt: rec.Attempt})
	}
}

// TripHandler records the departure date and party composition. Changing the
// party resizes the traveler roster and recomputes the total.
func TripHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		var in TripIn
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, err)
			return
		}
		if err := rec.Session.SetTripDetails(in.SelectedDate, session.Party{Adults: in.Adults, Children: in.Children}); err != nil {
			writeErr(w, err)
			return
		}
		if err := d.Sessions.Put(r.Context(), rec.Session.ID, rec); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionOut{Session: rec.Session, Attempt: rec.Attempt})
	}
}

// TravelersHandler replaces the traveler roster.
func TravelersHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		var in TravelersIn
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, err)
			return
		}
		if err := rec.Session.SetTravelers(in.Travelers); err != nil {
			writeErr(w, err)
			return
		}
		if err := d.Sessions.Put(r.Context(), rec.Session.ID, rec); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionOut{Session: rec.Session, Attempt: rec.Attempt})
	}
}

// ContactHandler stores the customer's contact info.
func ContactHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		var in ContactIn
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, err)
			return
		}
		rec.Session.SetCustomer(in.Customer)
		if err := d.Sessions.Put(r.Context(), rec.Session.ID, rec); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionOut{Session: rec.Session, Attempt: rec.Attempt})
	}
}

// NextHandler validates the current step and advances. A validation failure
// leaves the step untouched and is surfaced inline to the UI.
func NextHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := rec.Session.Next(); err != nil {
			writeErr(w, err)
			return
		}
		if err := d.Sessions.Put(r.Context(), rec.Session.ID, rec); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionOut{Session: rec.Session, Attempt: rec.Attempt})
	}
}

// PreviousHandler steps back. Always permitted, never clears data.
func PreviousHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Sessions.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		rec.Session.Previous()
		if err := d.Sessions.Put(r.Context(), rec.Session.ID, rec); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionOut{Session: rec.Session, Attempt: rec.Attempt})
	}
}
