// internal/backend/client.go
//
// Package backend is the client for the travel-agency GraphQL API. Only the
// three operations the booking flow depends on are implemented here; the
// API's internals are an external collaborator.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	errs "github.com/example/tour-booking-gateway/pkg/errors"
)

type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

// do posts a GraphQL request and decodes the data payload into out.
// A non-empty errors array wins over any partial data.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode backend data: %w", err)
		}
	}
	return nil
}

const initializePaymentQuery = `
mutation InitializePayment($email: String!, $amount: Int!, $currency: String!, $reference: String!, $metadata: JSON) {
  initializePayment(email: $email, amount: $amount, currency: $currency, reference: $reference, metadata: $metadata) {
    authorizationHandle
  }
}`

type InitializePaymentInput struct {
	Email       string
	AmountMinor int64
	Currency    string
	Reference   string
	Metadata    map[string]string
}

// InitializePayment registers a pending transaction with the gateway backend
// and returns the handle the checkout widget is opened with.
func (c *Client) InitializePayment(ctx context.Context, in InitializePaymentInput) (string, error) {
	if in.AmountMinor <= 0 {
		return "", errs.New(errs.CodeInitialization, "amount must be positive")
	}
	if in.Currency == "" {
		return "", errs.New(errs.CodeInitialization, "currency is required")
	}

	var out struct {
		InitializePayment struct {
			AuthorizationHandle string `json:"authorizationHandle"`
		} `json:"initializePayment"`
	}
	err := c.do(ctx, initializePaymentQuery, map[string]any{
		"email":     in.Email,
		"amount":    in.AmountMinor,
		"currency":  in.Currency,
		"reference": in.Reference,
		"metadata":  in.Metadata,
	}, &out)
	if err != nil {
		return "", errs.Wrap(errs.CodeInitialization, "initialize payment", err)
	}
	return out.InitializePayment.AuthorizationHandle, nil
}

const verifyPaymentQuery = `
query VerifyPayment($reference: String!) {
  verifyPayment(reference: $reference) {
    status
    amount
    currency
  }
}`

type VerificationStatus string

const (
	VerifySuccess VerificationStatus = "success"
	VerifyFailed  VerificationStatus = "failed"
	VerifyPending VerificationStatus = "pending"
)

type VerificationResult struct {
	Status      VerificationStatus `json:"status"`
	AmountMinor int64              `json:"amount"`
	Currency    string             `json:"currency"`
}

// VerifyPayment asks the backend whether a gateway transaction settled.
// Read-only on the backend ledger, safe to call repeatedly.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (VerificationResult, error) {
	var out struct {
		VerifyPayment VerificationResult `json:"verifyPayment"`
	}
	err := c.do(ctx, verifyPaymentQuery, map[string]any{"reference": reference}, &out)
	if err != nil {
		return VerificationResult{}, errs.Wrap(errs.CodeVerification, "verify payment", err)
	}
	out.VerifyPayment.Status = VerificationStatus(strings.ToLower(string(out.VerifyPayment.Status)))
	return out.VerifyPayment, nil
}

const createBookingQuery = `
mutation CreateBooking($input: CreateBookingInput!) {
  createBooking(input: $input) {
    id
    status
    paymentReference
    createdAt
  }
}`

type TravelerInput struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Age                 int    `json:"age"`
	PassportNumber      string `json:"passportNumber,omitempty"`
	DietaryRequirements string `json:"dietaryRequirements,omitempty"`
}

type CustomerInput struct {
	Email               string `json:"email"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Phone               string `json:"phone"`
	Nationality         string `json:"nationality,omitempty"`
	EmergencyContact    string `json:"emergencyContact,omitempty"`
	DietaryRequirements string `json:"dietaryRequirements,omitempty"`
	MedicalConditions   string `json:"medicalConditions,omitempty"`
}

type BookingInput struct {
	TourID           string          `json:"tourId"`
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	AdultsCount      int             `json:"adultsCount"`
	ChildrenCount    int             `json:"childrenCount"`
	TotalPrice       int64           `json:"totalPrice"`
	Customer         CustomerInput   `json:"customer"`
	Travelers        []TravelerInput `json:"travelers"`
	PaymentReference string          `json:"paymentReference"`
}

type BookingRecord struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	PaymentReference string `json:"paymentReference"`
	CreatedAt        string `json:"createdAt"`
}

// CreateBooking commits the booking. The backend dedupes on paymentReference,
// so retrying after a failure with the same reference cannot double-book.
func (c *Client) CreateBooking(ctx context.Context, in BookingInput) (*BookingRecord, error) {
	var out struct {
		CreateBooking BookingRecord `json:"createBooking"`
	}
	err := c.do(ctx, createBookingQuery, map[string]any{"input": in}, &out)
	if err != nil {
		return nil, errs.Wrap(errs.CodeSubmission, "create booking", err)
	}
	return &out.CreateBooking, nil
}
