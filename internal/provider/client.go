package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cardpayhq/cardpay-backend/internal/config"
)

// Client implements Gateway against the provider's REST API. It is stateless
// and safe for concurrent use; construct one at process start.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	locationID  string
	version     string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.ProviderTimeout},
		baseURL:     cfg.ProviderBaseURL,
		accessToken: cfg.ProviderAccessToken,
		locationID:  cfg.ProviderLocationID,
		version:     cfg.ProviderVersion,
	}
}

func (c *Client) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	var envelope struct {
		Customer json.RawMessage `json:"customer"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/customers", params, &envelope); err != nil {
		return nil, err
	}
	return decodeCustomer(envelope.Customer)
}

func (c *Client) UpdateCustomer(ctx context.Context, customerID string, params CreateCustomerParams) (*Customer, error) {
	var envelope struct {
		Customer json.RawMessage `json:"customer"`
	}
	path := "/v2/customers/" + customerID
	if err := c.do(ctx, http.MethodPut, path, params, &envelope); err != nil {
		return nil, err
	}
	return decodeCustomer(envelope.Customer)
}

func (c *Client) DeleteCustomer(ctx context.Context, customerID string) error {
	return c.do(ctx, http.MethodDelete, "/v2/customers/"+customerID, nil, nil)
}

func (c *Client) CreateCard(ctx context.Context, params CreateCardParams) (*Card, error) {
	body := map[string]any{
		"idempotency_key":    params.IdempotencyKey,
		"source_id":          params.SourceID,
		"verification_token": params.VerificationToken,
		"card": map[string]any{
			"cardholder_name": params.CardholderName,
			"customer_id":     params.CustomerID,
		},
	}

	var envelope struct {
		Card json.RawMessage `json:"card"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/cards", body, &envelope); err != nil {
		return nil, err
	}
	return decodeCard(envelope.Card)
}

func (c *Client) DisableCard(ctx context.Context, cardID string) (*Card, error) {
	var envelope struct {
		Card json.RawMessage `json:"card"`
	}
	path := "/v2/cards/" + cardID + "/disable"
	if err := c.do(ctx, http.MethodPost, path, nil, &envelope); err != nil {
		return nil, err
	}
	return decodeCard(envelope.Card)
}

func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) (*Payment, error) {
	body := map[string]any{
		"idempotency_key": params.IdempotencyKey,
		"source_id":       params.SourceID,
		"customer_id":     params.CustomerID,
		"amount_money":    params.Amount,
		"autocomplete":    true,
		"location_id":     c.locationID,
		"reference_id":    params.ReferenceID,
	}

	var envelope struct {
		Payment json.RawMessage `json:"payment"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/payments", body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Payment) == 0 {
		return nil, nil
	}

	payment := &Payment{}
	if err := json.Unmarshal(envelope.Payment, payment); err != nil {
		return nil, fmt.Errorf("failed to decode provider payment: %w", err)
	}
	payment.Raw = envelope.Payment
	return payment, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode provider request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", c.version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Raw: payload}
		var decoded struct {
			Errors []ErrorDetail `json:"errors"`
		}
		if err := json.Unmarshal(payload, &decoded); err == nil {
			apiErr.Errors = decoded.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

func decodeCustomer(raw json.RawMessage) (*Customer, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	customer := &Customer{}
	if err := json.Unmarshal(raw, customer); err != nil {
		return nil, fmt.Errorf("failed to decode provider customer: %w", err)
	}
	customer.Raw = raw
	return customer, nil
}

func decodeCard(raw json.RawMessage) (*Card, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	card := &Card{}
	if err := json.Unmarshal(raw, card); err != nil {
		return nil, fmt.Errorf("failed to decode provider card: %w", err)
	}
	card.Raw = raw
	return card, nil
}
