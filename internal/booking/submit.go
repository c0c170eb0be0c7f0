// internal/booking/submit.go
//
// Package booking converts a completed session into a single booking-creation
// call. Submission is effectively idempotent: the backend dedupes on the
// payment reference, so a retry after a rejection cannot double-book.
package booking

import (
	"context"
	"strings"

	"github.com/example/tour-booking-gateway/internal/backend"
	"github.com/example/tour-booking-gateway/internal/session"
	errs "github.com/example/tour-booking-gateway/pkg/errors"
	m "github.com/example/tour-booking-gateway/pkg/metrics"
)

// BackendClient is the slice of the agency API the submitter needs.
type BackendClient interface {
	CreateBooking(ctx context.Context, in backend.BookingInput) (*backend.BookingRecord, error)
}

type Submitter struct {
	backend BackendClient
}

func NewSubmitter(b BackendClient) *Submitter {
	return &Submitter{backend: b}
}

// Submit re-validates the whole session and creates the booking record.
// It refuses without a verified payment reference, before any backend call.
// On rejection the session's verified reference is left untouched so the
// user (or support) can retry submission without paying again.
func (s *Submitter) Submit(ctx context.Context, sess *session.Session) (*backend.BookingRecord, error) {
	if !sess.Payment.Verified || sess.Payment.Reference == "" {
		return nil, errs.New(errs.CodeUnverifiedPayment, "booking requires a verified payment")
	}

	// Step validations are re-checked here, not just at the original
	// transitions: backward navigation plus edits may have broken one.
	if err := sess.ValidateAll(); err != nil {
		return nil, err
	}

	endDate, err := sess.EndDate()
	if err != nil {
		return nil, err
	}

	in := backend.BookingInput{
		TourID:           sess.TourID,
		StartDate:        sess.SelectedDate,
		EndDate:          endDate,
		AdultsCount:      sess.Party.Adults,
		ChildrenCount:    sess.Party.Children,
		TotalPrice:       sess.Pricing.TotalAmount,
		Customer:         customerInput(sess.Customer),
		Travelers:        travelerInputs(sess.Travelers),
		PaymentReference: sess.Payment.Reference,
	}

	rec, err := s.backend.CreateBooking(ctx, in)
	if err != nil {
		m.IncPaymentStage("SUBMIT", "FAILED")
		return nil, err
	}
	m.IncPaymentStage("SUBMIT", "SUCCESS")
	return rec, nil
}

func customerInput(c session.Customer) backend.CustomerInput {
	return backend.CustomerInput{
		Email:               c.Email,
		FirstName:           c.FirstName,
		LastName:            c.LastName,
		Phone:               c.Phone,
		Nationality:         c.Nationality,
		EmergencyContact:    c.EmergencyContact,
		DietaryRequirements: c.DietaryRequirements,
		MedicalConditions:   c.MedicalConditions,
	}
}

// travelerInputs keeps only entries with both names present.
func travelerInputs(travelers []session.Traveler) []backend.TravelerInput {
	out := make([]backend.TravelerInput, 0, len(travelers))
	for _, t := range travelers {
		if strings.TrimSpace(t.FirstName) == "" || strings.TrimSpace(t.LastName) == "" {
			continue
		}
		out = append(out, backend.TravelerInput{
			FirstName:           t.FirstName,
			LastName:            t.LastName,
			Age:                 t.Age,
			PassportNumber:      t.PassportNumber,
			DietaryRequirements: t.DietaryRequirements,
		})
	}
	return out
}
