// Package provider wraps the external card-processing API behind the Gateway
// interface. Every mutating call carries a caller-supplied idempotency key;
// monetary amounts cross this boundary as integers in the currency's minor
// unit.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
)

type Gateway interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, params CreateCustomerParams) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	CreateCard(ctx context.Context, params CreateCardParams) (*Card, error)
	DisableCard(ctx context.Context, cardID string) (*Card, error)
	CreatePayment(ctx context.Context, params CreatePaymentParams) (*Payment, error)
}

// Money is an amount in the currency's minor unit (e.g. cents).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CreateCustomerParams struct {
	EmailAddress string `json:"email_address"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
}

type CreateCardParams struct {
	IdempotencyKey    string
	SourceID          string // one-time card token from the client SDK
	VerificationToken string
	CustomerID        string
	CardholderName    string
}

type CreatePaymentParams struct {
	IdempotencyKey string
	SourceID       string // provider card id
	CustomerID     string
	Amount         Money
	ReferenceID    string // local payment reference, for correlation
}

// Customer, Card and Payment mirror the provider's response objects. Raw holds
// the undecoded response body so callers can persist it as metadata.
type Customer struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`

	Raw json.RawMessage `json:"-"`
}

type Card struct {
	ID             string `json:"id"`
	CardholderName string `json:"cardholder_name"`
	CardBrand      string `json:"card_brand"`
	CardType       string `json:"card_type"`
	Last4          string `json:"last_4"`
	ExpMonth       int    `json:"exp_month"`
	ExpYear        int    `json:"exp_year"`
	Enabled        *bool  `json:"enabled"`

	Raw json.RawMessage `json:"-"`
}

type Payment struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Amount      Money  `json:"amount_money"`
	ReferenceID string `json:"reference_id"`

	Raw json.RawMessage `json:"-"`
}

type ErrorDetail struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Field    string `json:"field,omitempty"`
}

// APIError is a structured rejection from the provider. Handlers translate it
// into a 400 using the first error detail.
type APIError struct {
	StatusCode int
	Errors     []ErrorDetail

	Raw json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.FirstDetail())
}

func (e *APIError) FirstDetail() string {
	if len(e.Errors) > 0 {
		if e.Errors[0].Detail != "" {
			return e.Errors[0].Detail
		}
		return e.Errors[0].Code
	}
	return "unknown provider error"
}
