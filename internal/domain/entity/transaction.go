package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction movimiento de compra/canje registrado por la API.
type Transaction struct {
	ID           string          `json:"_id"`
	MerchantID   string          `json:"merchantId"`
	MerchantName string          `json:"merchantName,omitempty"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName,omitempty"`
	Type         string          `json:"type"` // purchase | redeem | topup
	Amount       decimal.Decimal `json:"amount"`
	Points       decimal.Decimal `json:"points"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// GetID implementa Identifiable.
func (t Transaction) GetID() string { return t.ID }
