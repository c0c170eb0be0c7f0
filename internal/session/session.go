// internal/session/session.go
//
// Package session owns the booking wizard state: a four-step forward-validated
// flow (trip details -> traveler roster -> contact info -> payment). Each
// session is exclusively owned by one wizard instance; it is created when the
// wizard opens and discarded on close or successful submission.
package session

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	errs "github.com/example/tour-booking-gateway/pkg/errors"
)

// Step is the wizard step. CurrentStep only moves forward through validated
// transitions; Previous is always allowed.
type Step string

const (
	StepTourDetails Step = "tour_details"
	StepTravelers   Step = "travelers"
	StepContactInfo Step = "contact_info"
	StepPayment     Step = "payment"
)

var stepOrder = []Step{StepTourDetails, StepTravelers, StepContactInfo, StepPayment}

func (s Step) index() int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

const (
	defaultAdultAge = 25
	defaultChildAge = 10

	dateLayout = "2006-01-02"
)

type Party struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

func (p Party) Total() int { return p.Adults + p.Children }

type Traveler struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Age                 int    `json:"age"`
	PassportNumber      string `json:"passport_number,omitempty"`
	DietaryRequirements string `json:"dietary_requirements,omitempty"`
}

type Customer struct {
	Email               string `json:"email"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Phone               string `json:"phone"`
	Nationality         string `json:"nationality,omitempty"`
	EmergencyContact    string `json:"emergency_contact,omitempty"`
	DietaryRequirements string `json:"dietary_requirements,omitempty"`
	MedicalConditions   string `json:"medical_conditions,omitempty"`
}

// Pricing is always derived: TotalAmount is recomputed from the party
// composition and never edited directly. Amounts are minor units.
type Pricing struct {
	BaseAmount        int64   `json:"base_amount"`
	ChildDiscountRate float64 `json:"child_discount_rate"`
	TotalAmount       int64   `json:"total_amount"`
}

// Payment gates submission: Verified implies a non-empty Reference.
type Payment struct {
	Reference string `json:"reference,omitempty"`
	Verified  bool   `json:"verified"`
}

type Session struct {
	ID           string     `json:"id"`
	TourID       string     `json:"tour_id"`
	DurationDays int        `json:"duration_days"`
	CurrentStep  Step       `json:"current_step"`
	SelectedDate string     `json:"selected_date,omitempty"`
	Party        Party      `json:"party"`
	Travelers    []Traveler `json:"travelers"`
	Customer     Customer   `json:"customer"`
	Pricing      Pricing    `json:"pricing"`
	Payment      Payment    `json:"payment"`
	CreatedAt    time.Time  `json:"created_at"`
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// New creates a session parked at TourDetails with a single adult slot.
func New(id, tourID string, durationDays int, baseAmount int64, childDiscountRate float64) *Session {
	s := &Session{
		ID:           id,
		TourID:       tourID,
		DurationDays: durationDays,
		CurrentStep:  StepTourDetails,
		Party:        Party{Adults: 1},
		Pricing: Pricing{
			BaseAmount:        baseAmount,
			ChildDiscountRate: childDiscountRate,
		},
		CreatedAt: time.Now().UTC(),
	}
	s.resizeTravelers()
	s.recomputePricing()
	return s
}

// SetTripDetails records the departure date and party composition. The
// traveler roster is resized to adults+children, preserving already-entered
// entries by position, and the total price is recomputed.
func (s *Session) SetTripDetails(date string, party Party) error {
	if party.Adults < 1 {
		return errs.New(errs.CodeValidation, "adults: at least one adult is required")
	}
	if party.Children < 0 {
		return errs.New(errs.CodeValidation, "children: cannot be negative")
	}
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return errs.New(errs.CodeValidation, "selected_date: must be YYYY-MM-DD")
		}
	}
	s.SelectedDate = date
	s.Party = party
	s.resizeTravelers()
	s.recomputePricing()
	return nil
}

// SetTravelers replaces the roster. Length must match the party composition;
// per-field checks happen when leaving the Travelers step.
func (s *Session) SetTravelers(travelers []Traveler) error {
	if len(travelers) != s.Party.Total() {
		return errs.New(errs.CodeValidation,
			fmt.Sprintf("travelers: expected %d entries, got %d", s.Party.Total(), len(travelers)))
	}
	for i, t := range travelers {
		if t.Age < 0 || t.Age > 120 {
			return errs.New(errs.CodeValidation, fmt.Sprintf("travelers[%d].age: must be between 0 and 120", i))
		}
	}
	s.Travelers = travelers
	return nil
}

// SetCustomer stores contact info. Validated when leaving ContactInfo.
func (s *Session) SetCustomer(c Customer) {
	c.Email = strings.TrimSpace(c.Email)
	s.Customer = c
}

// Next validates the current step and advances to the following one.
// Validation failures leave CurrentStep untouched.
func (s *Session) Next() error {
	if err := s.validateStep(s.CurrentStep); err != nil {
		return err
	}
	i := s.CurrentStep.index()
	if i < 0 || i == len(stepOrder)-1 {
		return errs.New(errs.CodeConflict, "already at the payment step")
	}
	s.CurrentStep = stepOrder[i+1]
	return nil
}

// Previous steps back one position. Always permitted; entered data is kept.
func (s *Session) Previous() {
	if i := s.CurrentStep.index(); i > 0 {
		s.CurrentStep = stepOrder[i-1]
	}
}

// MarkPaymentVerified records a settled gateway reference; the only path
// that unlocks submission.
func (s *Session) MarkPaymentVerified(reference string) error {
	if reference == "" {
		return errs.New(errs.CodeVerification, "verified payment requires a reference")
	}
	s.Payment = Payment{Reference: reference, Verified: true}
	return nil
}

// EndDate derives the trip end from the selected date and tour duration.
func (s *Session) EndDate() (string, error) {
	start, err := time.Parse(dateLayout, s.SelectedDate)
	if err != nil {
		return "", errs.New(errs.CodeValidation, "selected_date: must be YYYY-MM-DD")
	}
	return start.AddDate(0, 0, s.DurationDays).Format(dateLayout), nil
}

// ValidateAll re-checks every step up to and including ContactInfo. Used at
// submission time: backward navigation plus edits may have invalidated a step
// that passed earlier.
func (s *Session) ValidateAll() error {
	for _, step := range []Step{StepTourDetails, StepTravelers, StepContactInfo} {
		if err := s.validateStep(step); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) validateStep(step Step) error {
	switch step {
	case StepTourDetails:
		if s.SelectedDate == "" {
			return errs.New(errs.CodeValidation, "selected_date: a departure date is required")
		}
		if s.Party.Adults < 1 {
			return errs.New(errs.CodeValidation, "adults: at least one adult is required")
		}
	case StepTravelers:
		for i, t := range s.Travelers {
			if strings.TrimSpace(t.FirstName) == "" {
				return errs.New(errs.CodeValidation, fmt.Sprintf("travelers[%d].first_name: required", i))
			}
			if strings.TrimSpace(t.LastName) == "" {
				return errs.New(errs.CodeValidation, fmt.Sprintf("travelers[%d].last_name: required", i))
			}
			if t.Age < 1 || t.Age > 120 {
				return errs.New(errs.CodeValidation, fmt.Sprintf("travelers[%d].age: must be between 1 and 120", i))
			}
		}
	case StepContactInfo:
		if strings.TrimSpace(s.Customer.FirstName) == "" {
			return errs.New(errs.CodeValidation, "customer.first_name: required")
		}
		if strings.TrimSpace(s.Customer.LastName) == "" {
			return errs.New(errs.CodeValidation, "customer.last_name: required")
		}
		if strings.TrimSpace(s.Customer.Phone) == "" {
			return errs.New(errs.CodeValidation, "customer.phone: required")
		}
		if !emailShape.MatchString(s.Customer.Email) {
			return errs.New(errs.CodeValidation, "customer.email: not a valid email address")
		}
	case StepPayment:
		if !s.Payment.Verified {
			return errs.New(errs.CodeUnverifiedPayment, "payment has not been verified")
		}
	}
	return nil
}

// resizeTravelers grows or shrinks the roster to adults+children, keeping
// existing entries by index. New slots get display-convenience defaults,
// not a validation bypass: empty names still fail the Travelers step.
func (s *Session) resizeTravelers() {
	total := s.Party.Total()
	next := make([]Traveler, total)
	for i := 0; i < total; i++ {
		if i < len(s.Travelers) {
			next[i] = s.Travelers[i]
			continue
		}
		age := defaultChildAge
		if i < s.Party.Adults {
			age = defaultAdultAge
		}
		next[i] = Traveler{Age: age}
	}
	s.Travelers = next
}

// recomputePricing applies
//
//	total = base*adults + round(base*(1-discount))*children
//
// deterministically on every party change.
func (s *Session) recomputePricing() {
	base := s.Pricing.BaseAmount
	childPrice := int64(math.Round(float64(base) * (1 - s.Pricing.ChildDiscountRate)))
	s.Pricing.TotalAmount = base*int64(s.Party.Adults) + childPrice*int64(s.Party.Children)
}
