package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente del programa de lealtad.
type Customer struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Points       decimal.Decimal `json:"points"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	Transactions int             `json:"totalTransactions"`
	// Tier lo calcula la API; si no viene, la consola lo muestra como desconocido.
	Tier      *string   `json:"tier,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetID implementa Identifiable.
func (c Customer) GetID() string { return c.ID }
