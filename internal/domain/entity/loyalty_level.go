package entity

import "github.com/shopspring/decimal"

// LoyaltyLevel nivel del programa (Silver, Gold...). Los umbrales los define la API.
type LoyaltyLevel struct {
	ID         string          `json:"_id"`
	Name       string          `json:"name"`
	MinPoints  decimal.Decimal `json:"minPoints"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Benefits   []string        `json:"benefits,omitempty"`
	Color      string          `json:"color,omitempty"`
	Priority   int             `json:"priority"`
	IsActive   bool            `json:"isActive"`
}

// GetID implementa Identifiable.
func (l LoyaltyLevel) GetID() string { return l.ID }
