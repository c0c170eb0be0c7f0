// internal/handlers/types.go
package handlers

import (
	"github.com/example/tour-booking-gateway/internal/backend"
	"github.com/example/tour-booking-gateway/internal/fx"
	"github.com/example/tour-booking-gateway/internal/gateway"
	"github.com/example/tour-booking-gateway/internal/session"
)

type CreateSessionIn struct {
	TourID       string `json:"tour_id"`
	DurationDays int    `json:"duration_days"`
	BaseAmount   int64  `json:"base_amount"` // minor units, canonical currency
}

type TripIn struct {
	SelectedDate string `json:"selected_date"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children"`
}

type TravelersIn struct {
	Travelers []session.Traveler `json:"travelers"`
}

type ContactIn struct {
	Customer session.Customer `json:"customer"`
}

type CallbackIn struct {
	Event     string `json:"event"` // "success" | "cancel"
	Reference string `json:"reference,omitempty"`
}

type SessionOut struct {
	Session *session.Session `json:"session"`
	Attempt *gateway.Attempt `json:"attempt,omitempty"`
}

type QuoteOut struct {
	Quote      fx.Quote       `json:"quote"`
	Conversion *fx.Conversion `json:"conversion,omitempty"`
}

type RefreshOut struct {
	Quote   fx.Quote `json:"quote"`
	Changed bool     `json:"changed"`
}

type PaymentOut struct {
	Attempt      *gateway.Attempt            `json:"attempt"`
	Conversion   fx.Conversion               `json:"conversion"`
	Verification *backend.VerificationResult `json:"verification,omitempty"`
}

type SubmitOut struct {
	Booking *backend.BookingRecord `json:"booking"`
}

type ErrorOut struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}
