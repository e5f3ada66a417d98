package dto

import "github.com/shopspring/decimal"

type InitPaymentRequest struct {
	CardID   uint            `json:"cardId"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}
