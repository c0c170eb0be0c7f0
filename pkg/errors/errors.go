// tour-booking-gateway/pkg/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes for the booking flow. Handlers map these to HTTP statuses;
// VALIDATION errors never reach the backend.
const (
	CodeValidation        = "VALIDATION"
	CodeConfiguration     = "CONFIGURATION"
	CodeInitialization    = "INITIALIZATION"
	CodeVerification      = "VERIFICATION"
	CodeUnverifiedPayment = "UNVERIFIED_PAYMENT"
	CodeSubmission        = "SUBMISSION"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
)

type E struct {
	Code    string
	Message string
	Err     error
}

func (e E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e E) Unwrap() error { return e.Err }

func Wrap(code, msg string, err error) error {
	return E{Code: code, Message: msg, Err: err}
}

func New(code, msg string) error {
	return E{Code: code, Message: msg}
}

// CodeOf extracts the code from an error produced by this package.
// Returns "" for nil or foreign errors.
func CodeOf(err error) string {
	var e E
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}
