// internal/gateway/gateway.go
//
// Package gateway drives a third-party checkout widget through one payment
// attempt at a time. The widget runs outside our control flow: it renders its
// own overlay and calls back seconds to minutes later, or never. Each attempt
// is a single traversal of
//
//	Idle -> Initializing -> AwaitingUserAction -> { VerifyingResult -> Settled | Failed } | Cancelled
//
// and a retry is always a fresh traversal with a fresh client-generated
// reference, so backend records never collide.
package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/tour-booking-gateway/internal/backend"
	errs "github.com/example/tour-booking-gateway/pkg/errors"
	m "github.com/example/tour-booking-gateway/pkg/metrics"
)

type State string

const (
	StateIdle               State = "idle"
	StateInitializing       State = "initializing"
	StateAwaitingUserAction State = "awaiting_user_action"
	StateVerifyingResult    State = "verifying_result"
	StateSettled            State = "settled"
	StateFailed             State = "failed"
	StateCancelled          State = "cancelled"
)

// Attempt is one traversal of the state machine. The reference is generated
// here, never reused across attempts.
type Attempt struct {
	Reference           string                      `json:"reference"`
	AuthorizationHandle string                      `json:"authorization_handle,omitempty"`
	AmountMinor         int64                       `json:"amount_minor"`
	Currency            string                      `json:"currency"`
	State               State                       `json:"state"`
	Verification        *backend.VerificationResult `json:"verification,omitempty"`
	StartedAt           time.Time                   `json:"started_at"`
}

// Backend is the slice of the agency API the adapter needs.
type Backend interface {
	InitializePayment(ctx context.Context, in backend.InitializePaymentInput) (string, error)
	VerifyPayment(ctx context.Context, reference string) (backend.VerificationResult, error)
}

type Adapter struct {
	backend   Backend
	publicKey string
}

// New builds an Adapter. publicKey is the gateway's client key; without it
// the payment step cannot be entered at all.
func New(b Backend, publicKey string) *Adapter {
	return &Adapter{backend: b, publicKey: publicKey}
}

func newReference() string {
	return "TBG-" + uuid.NewString()
}

// Begin registers a pending transaction and returns the attempt parked in
// AwaitingUserAction. active is the session's current attempt, if any: while
// one attempt awaits the user, starting another is not permitted.
func (a *Adapter) Begin(ctx context.Context, email string, amountMinor int64, currency string, active *Attempt) (*Attempt, error) {
	if a.publicKey == "" {
		return nil, errs.New(errs.CodeConfiguration, "gateway public key is not configured")
	}
	if active != nil {
		switch active.State {
		case StateInitializing, StateAwaitingUserAction, StateVerifyingResult:
			return nil, errs.New(errs.CodeConflict, "a payment attempt is already in progress")
		}
	}

	att := &Attempt{
		Reference:   newReference(),
		AmountMinor: amountMinor,
		Currency:    currency,
		State:       StateInitializing,
		StartedAt:   time.Now().UTC(),
	}

	handle, err := a.backend.InitializePayment(ctx, backend.InitializePaymentInput{
		Email:       email,
		AmountMinor: amountMinor,
		Currency:    currency,
		Reference:   att.Reference,
		Metadata:    map[string]string{"public_key": a.publicKey},
	})
	if err != nil {
		att.State = StateFailed
		m.IncPaymentStage("GATEWAY_INIT", "FAILED")
		return att, err
	}

	att.AuthorizationHandle = handle
	att.State = StateAwaitingUserAction
	m.IncPaymentStage("GATEWAY_INIT", "SUCCESS")
	return att, nil
}

// HandleSuccess is the widget's success callback. Verification always runs
// before the attempt can settle; anything other than a Success status,
// including Pending, fails the attempt and keeps submission locked.
func (a *Adapter) HandleSuccess(ctx context.Context, att *Attempt) (backend.VerificationResult, error) {
	if att.State != StateAwaitingUserAction {
		return backend.VerificationResult{}, errs.New(errs.CodeConflict,
			"no payment attempt is awaiting user action")
	}

	att.State = StateVerifyingResult
	res, err := a.backend.VerifyPayment(ctx, att.Reference)
	if err != nil {
		att.State = StateFailed
		m.IncPaymentStage("GATEWAY_VERIFY", "FAILED")
		return backend.VerificationResult{}, err
	}

	if res.Status != backend.VerifySuccess {
		att.State = StateFailed
		att.Verification = &res
		m.IncPaymentStage("GATEWAY_VERIFY", "FAILED")
		return res, errs.New(errs.CodeUnverifiedPayment,
			"payment was not confirmed as settled (status: "+string(res.Status)+")")
	}

	att.State = StateSettled
	att.Verification = &res
	m.IncPaymentStage("GATEWAY_VERIFY", "SUCCESS")
	return res, nil
}

// HandleCancel is the widget's cancellation callback: no payload, no error.
// The session stays parked at the payment step for a retry.
func (a *Adapter) HandleCancel(att *Attempt) error {
	if att.State != StateAwaitingUserAction {
		return errs.New(errs.CodeConflict, "no payment attempt is awaiting user action")
	}
	att.State = StateCancelled
	return nil
}
