// internal/session/session_test.go
package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/example/tour-booking-gateway/pkg/errors"
)

func newTestSession() *Session {
	return New("sess-1", "cape-coast", 5, 10000, 0.3)
}

func TestNewSessionStartsAtTourDetails(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, StepTourDetails, s.CurrentStep)
	assert.Equal(t, 1, s.Party.Adults)
	require.Len(t, s.Travelers, 1)
	assert.Equal(t, 25, s.Travelers[0].Age)
	assert.Equal(t, int64(10000), s.Pricing.TotalAmount)
}

func TestPricingFormula(t *testing.T) {
	s := newTestSession()

	// 2 adults, 1 child, base 10000, discount 0.3:
	// 10000*2 + round(10000*0.7)*1 = 27000
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 2, Children: 1}))
	assert.Equal(t, int64(27000), s.Pricing.TotalAmount)

	// recomputation is drift free
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 2, Children: 1}))
	assert.Equal(t, int64(27000), s.Pricing.TotalAmount)
}

func TestPricingRoundsChildFare(t *testing.T) {
	s := New("sess-2", "t", 3, 999, 0.33)
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 1, Children: 2}))
	// round(999*0.67) = round(669.33) = 669
	assert.Equal(t, int64(999+2*669), s.Pricing.TotalAmount)
}

func TestResizePreservesEnteredTravelers(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 2, Children: 1}))

	require.NoError(t, s.SetTravelers([]Traveler{
		{FirstName: "Ama", LastName: "Mensah", Age: 34},
		{FirstName: "Kojo", LastName: "Mensah", Age: 36},
		{FirstName: "Abena", LastName: "Mensah", Age: 8},
	}))

	// growing keeps all three by position and defaults the new child slot
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 2, Children: 2}))
	require.Len(t, s.Travelers, 4)
	assert.Equal(t, "Ama", s.Travelers[0].FirstName)
	assert.Equal(t, "Kojo", s.Travelers[1].FirstName)
	assert.Equal(t, "Abena", s.Travelers[2].FirstName)
	assert.Equal(t, "", s.Travelers[3].FirstName)
	assert.Equal(t, 10, s.Travelers[3].Age)

	// shrinking truncates from the end
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 1, Children: 1}))
	require.Len(t, s.Travelers, 2)
	assert.Equal(t, "Ama", s.Travelers[0].FirstName)
	assert.Equal(t, "Kojo", s.Travelers[1].FirstName)
}

func TestSetTravelersRejectsWrongLength(t *testing.T) {
	s := newTestSession()
	err := s.SetTravelers([]Traveler{{FirstName: "A", LastName: "B", Age: 30}, {FirstName: "C", LastName: "D", Age: 31}})
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
}

func TestPartyValidation(t *testing.T) {
	s := newTestSession()
	assert.Error(t, s.SetTripDetails("2026-06-01", Party{Adults: 0}))
	assert.Error(t, s.SetTripDetails("2026-06-01", Party{Adults: 1, Children: -1}))
	assert.Error(t, s.SetTripDetails("not-a-date", Party{Adults: 1}))
}

func TestNextRequiresDate(t *testing.T) {
	s := newTestSession()
	err := s.Next()
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
	assert.Equal(t, StepTourDetails, s.CurrentStep)
}

func advanceToContact(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 1, Children: 0}))
	require.NoError(t, s.Next())
	require.NoError(t, s.SetTravelers([]Traveler{{FirstName: "Ama", LastName: "Mensah", Age: 34}}))
	require.NoError(t, s.Next())
}

func TestTravelersStepValidation(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 1}))
	require.NoError(t, s.Next())

	// default slot has an age but no names: may not pass
	err := s.Next()
	require.Error(t, err)
	assert.Equal(t, StepTravelers, s.CurrentStep)

	require.NoError(t, s.SetTravelers([]Traveler{{FirstName: "Ama", LastName: "Mensah", Age: 0}}))
	err = s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age")
}

func TestInvalidEmailBlocksContactStep(t *testing.T) {
	s := newTestSession()
	advanceToContact(t, s)

	s.SetCustomer(Customer{FirstName: "Ama", LastName: "Mensah", Phone: "+233201234567", Email: "not-an-email"})
	err := s.Next()
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
	assert.Equal(t, StepContactInfo, s.CurrentStep)

	s.SetCustomer(Customer{FirstName: "Ama", LastName: "Mensah", Phone: "+233201234567", Email: "ama@example.com"})
	require.NoError(t, s.Next())
	assert.Equal(t, StepPayment, s.CurrentStep)
}

func TestPreviousAlwaysAllowedAndKeepsData(t *testing.T) {
	s := newTestSession()
	advanceToContact(t, s)

	s.Previous()
	assert.Equal(t, StepTravelers, s.CurrentStep)
	assert.Equal(t, "Ama", s.Travelers[0].FirstName)

	s.Previous()
	s.Previous()
	assert.Equal(t, StepTourDetails, s.CurrentStep)
	assert.Equal(t, "2026-06-01", s.SelectedDate)
}

func TestNextAtPaymentIsRejected(t *testing.T) {
	s := newTestSession()
	advanceToContact(t, s)
	s.SetCustomer(Customer{FirstName: "Ama", LastName: "Mensah", Phone: "+233201234567", Email: "ama@example.com"})
	require.NoError(t, s.Next())

	err := s.Next()
	require.Error(t, err)
	assert.Equal(t, StepPayment, s.CurrentStep)
}

func TestMarkPaymentVerifiedRequiresReference(t *testing.T) {
	s := newTestSession()
	require.Error(t, s.MarkPaymentVerified(""))
	assert.False(t, s.Payment.Verified)

	require.NoError(t, s.MarkPaymentVerified("TBG-abc"))
	assert.True(t, s.Payment.Verified)
	assert.Equal(t, "TBG-abc", s.Payment.Reference)
}

func TestEndDate(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SetTripDetails("2026-06-01", Party{Adults: 1}))
	end, err := s.EndDate()
	require.NoError(t, err)
	assert.Equal(t, "2026-06-06", end)
}

func TestValidateAllCatchesBackwardEdits(t *testing.T) {
	s := newTestSession()
	advanceToContact(t, s)
	s.SetCustomer(Customer{FirstName: "Ama", LastName: "Mensah", Phone: "+233201234567", Email: "ama@example.com"})
	require.NoError(t, s.Next())
	require.NoError(t, s.ValidateAll())

	// going back and breaking the email must fail a later re-validation
	s.Previous()
	s.SetCustomer(Customer{FirstName: "Ama", LastName: "Mensah", Phone: "+233201234567", Email: "broken"})
	err := s.ValidateAll()
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
}
