// internal/gateway/gateway_test.go
package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tour-booking-gateway/internal/backend"
	errs "github.com/example/tour-booking-gateway/pkg/errors"
)

type fakeBackend struct {
	initErr      error
	verifyStatus backend.VerificationStatus
	verifyErr    error

	initCalls   []backend.InitializePaymentInput
	verifyCalls []string
}

func (f *fakeBackend) InitializePayment(_ context.Context, in backend.InitializePaymentInput) (string, error) {
	f.initCalls = append(f.initCalls, in)
	if f.initErr != nil {
		return "", f.initErr
	}
	return "AUTH-" + in.Reference, nil
}

func (f *fakeBackend) VerifyPayment(_ context.Context, reference string) (backend.VerificationResult, error) {
	f.verifyCalls = append(f.verifyCalls, reference)
	if f.verifyErr != nil {
		return backend.VerificationResult{}, f.verifyErr
	}
	return backend.VerificationResult{Status: f.verifyStatus, AmountMinor: 418500, Currency: "GHS"}, nil
}

func TestBeginWithoutPublicKeyIsConfigurationError(t *testing.T) {
	a := New(&fakeBackend{}, "")
	_, err := a.Begin(context.Background(), "ama@example.com", 1000, "GHS", nil)
	require.Error(t, err)
	assert.Equal(t, errs.CodeConfiguration, errs.CodeOf(err))
}

func TestBeginParksAttemptAwaitingUserAction(t *testing.T) {
	be := &fakeBackend{}
	a := New(be, "pk_test_123")

	att, err := a.Begin(context.Background(), "ama@example.com", 418500, "GHS", nil)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingUserAction, att.State)
	assert.True(t, strings.HasPrefix(att.Reference, "TBG-"))
	assert.Equal(t, "AUTH-"+att.Reference, att.AuthorizationHandle)
	require.Len(t, be.initCalls, 1)
	assert.Equal(t, int64(418500), be.initCalls[0].AmountMinor)
}

func TestBeginRejectedWhileAttemptInProgress(t *testing.T) {
	a := New(&fakeBackend{}, "pk_test_123")

	att, err := a.Begin(context.Background(), "a@b.co", 1000, "GHS", nil)
	require.NoError(t, err)

	_, err = a.Begin(context.Background(), "a@b.co", 1000, "GHS", att)
	require.Error(t, err)
	assert.Equal(t, errs.CodeConflict, errs.CodeOf(err))
}

func TestInitializationFailureIsRecoverable(t *testing.T) {
	be := &fakeBackend{initErr: errs.New(errs.CodeInitialization, "invalid currency")}
	a := New(be, "pk_test_123")

	att, err := a.Begin(context.Background(), "a@b.co", 1000, "GHS", nil)
	require.Error(t, err)
	assert.Equal(t, StateFailed, att.State)

	// retry is a fresh traversal with a fresh reference
	be.initErr = nil
	retry, err := a.Begin(context.Background(), "a@b.co", 1000, "GHS", att)
	require.NoError(t, err)
	assert.NotEqual(t, att.Reference, retry.Reference)
}

func TestSuccessCallbackVerifiesBeforeSettling(t *testing.T) {
	be := &fakeBackend{verifyStatus: backend.VerifySuccess}
	a := New(be, "pk_test_123")

	att, err := a.Begin(context.Background(), "a@b.co", 1000, "GHS", nil)
	require.NoError(t, err)

	res, err := a.HandleSuccess(context.Background(), att)
	require.NoError(t, err)
	assert.Equal(t, StateSettled, att.State)
	assert.Equal(t, backend.VerifySuccess, res.Status)
	require.Len(t, be.verifyCalls, 1)
	assert.Equal(t, att.Reference, be.verifyCalls[0])
}

func TestPendingVerificationGatesAsFailed(t *testing.T) {
	be := &fakeBackend{verifyStatus: backend.VerifyPending}
	a := New(be, "pk_test_123")

	att, _ := a.Begin(context.Background(), "a@b.co", 1000, "GHS", nil)
	res, err := a.HandleSuccess(context.Background(), att)
	require.Error(t, err)
	assert.Equal(t, errs.CodeUnverifiedPayment, errs.CodeOf(err))
	assert.Equal(t, StateFailed, att.State)
	// the reference exists, yet submission stays locked by the error
	assert.Equal(t, backend.VerifyPending, res.Status)
}

func TestVerificationCallFailureFailsAttempt(t *testing.T) {
	be := &fakeBackend{verifyErr: errs.Wrap(errs.CodeVerification, "verify payment", errors.New("boom"))}
	a := New(be, "pk_test_123")

	att, _ := a.Begin(context.Background(), "a@b.co", 1000, "GHS", nil)
	_, err := a.HandleSuccess(context.Background(), att)
	require.Error(t, err)
	assert.Equal(t, errs.CodeVerification, errs.CodeOf(err))
	assert.Equal(t, StateFailed, att.State)
}

func TestCancelLeavesNoError(t *testing.T) {
	a := New(&fakeBackend{}, "pk_test_123")

	att, _ := a.Begin(context.Background(), "a@b.co", 1000, "GHS", nil)
	require.NoError(t, a.HandleCancel(att))
	assert.Equal(t, StateCancelled, att.State)

	// a new attempt is permitted after cancellation, with a new reference
	retry, err := a.Begin(context.Background(), "a@b.co", 1000, "GHS", att)
	require.NoError(t, err)
	assert.NotEqual(t, att.Reference, retry.Reference)
}

func TestConsecutiveAttemptsNeverReuseReferences(t *testing.T) {
	a := New(&fakeBackend{}, "pk_test_123")
	seen := map[string]bool{}

	var prev *Attempt
	for i := 0; i < 5; i++ {
		att, err := a.Begin(context.Background(), "a@b.co", 1000, "GHS", prev)
		require.NoError(t, err)
		require.False(t, seen[att.Reference], "reference reused")
		seen[att.Reference] = true
		require.NoError(t, a.HandleCancel(att))
		prev = att
	}
}

func TestCallbacksRequireAwaitingState(t *testing.T) {
	a := New(&fakeBackend{}, "pk_test_123")
	att := &Attempt{State: StateCancelled, Reference: "TBG-x"}

	_, err := a.HandleSuccess(context.Background(), att)
	assert.Equal(t, errs.CodeConflict, errs.CodeOf(err))
	assert.Equal(t, errs.CodeConflict, errs.CodeOf(a.HandleCancel(att)))
}
