// Package providertest provides a scripted in-memory Gateway for tests.
package providertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cardpayhq/cardpay-backend/internal/provider"
)

// Gateway implements provider.Gateway. Each method uses its Fn override when
// set, otherwise a deterministic happy-path response. All calls are recorded.
type Gateway struct {
	mu sync.Mutex

	CreateCustomerFn func(params provider.CreateCustomerParams) (*provider.Customer, error)
	CreateCardFn     func(params provider.CreateCardParams) (*provider.Card, error)
	DisableCardFn    func(cardID string) (*provider.Card, error)
	CreatePaymentFn  func(params provider.CreatePaymentParams) (*provider.Payment, error)

	CustomerCalls []provider.CreateCustomerParams
	CardCalls     []provider.CreateCardParams
	DisableCalls  []string
	PaymentCalls  []provider.CreatePaymentParams

	seq int
}

func New() *Gateway {
	return &Gateway{}
}

func (g *Gateway) CreateCustomer(_ context.Context, params provider.CreateCustomerParams) (*provider.Customer, error) {
	g.mu.Lock()
	g.CustomerCalls = append(g.CustomerCalls, params)
	g.seq++
	n := g.seq
	g.mu.Unlock()

	if g.CreateCustomerFn != nil {
		return g.CreateCustomerFn(params)
	}

	customer := &provider.Customer{
		ID:           fmt.Sprintf("CUST-%d", n),
		EmailAddress: params.EmailAddress,
		GivenName:    params.GivenName,
		FamilyName:   params.FamilyName,
	}
	customer.Raw = mustRaw(customer)
	return customer, nil
}

func (g *Gateway) UpdateCustomer(_ context.Context, customerID string, params provider.CreateCustomerParams) (*provider.Customer, error) {
	customer := &provider.Customer{
		ID:           customerID,
		EmailAddress: params.EmailAddress,
		GivenName:    params.GivenName,
		FamilyName:   params.FamilyName,
	}
	customer.Raw = mustRaw(customer)
	return customer, nil
}

func (g *Gateway) DeleteCustomer(_ context.Context, _ string) error {
	return nil
}

func (g *Gateway) CreateCard(_ context.Context, params provider.CreateCardParams) (*provider.Card, error) {
	g.mu.Lock()
	g.CardCalls = append(g.CardCalls, params)
	g.seq++
	n := g.seq
	g.mu.Unlock()

	if g.CreateCardFn != nil {
		return g.CreateCardFn(params)
	}

	enabled := true
	card := &provider.Card{
		ID:             fmt.Sprintf("CARD-%d", n),
		CardholderName: params.CardholderName,
		CardBrand:      "VISA",
		CardType:       "CREDIT",
		Last4:          "1111",
		ExpMonth:       12,
		ExpYear:        2030,
		Enabled:        &enabled,
	}
	card.Raw = mustRaw(card)
	return card, nil
}

func (g *Gateway) DisableCard(_ context.Context, cardID string) (*provider.Card, error) {
	g.mu.Lock()
	g.DisableCalls = append(g.DisableCalls, cardID)
	g.mu.Unlock()

	if g.DisableCardFn != nil {
		return g.DisableCardFn(cardID)
	}

	enabled := false
	card := &provider.Card{
		ID:      cardID,
		Enabled: &enabled,
	}
	card.Raw = mustRaw(card)
	return card, nil
}

func (g *Gateway) CreatePayment(_ context.Context, params provider.CreatePaymentParams) (*provider.Payment, error) {
	g.mu.Lock()
	g.PaymentCalls = append(g.PaymentCalls, params)
	g.seq++
	n := g.seq
	g.mu.Unlock()

	if g.CreatePaymentFn != nil {
		return g.CreatePaymentFn(params)
	}

	payment := &provider.Payment{
		ID:          fmt.Sprintf("PAY-%d", n),
		Status:      "COMPLETED",
		Amount:      params.Amount,
		ReferenceID: params.ReferenceID,
	}
	payment.Raw = mustRaw(payment)
	return payment, nil
}

func mustRaw(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
