package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promo promoción publicada por un comercio o por la plataforma.
type Promo struct {
	ID          string          `json:"_id"`
	MerchantID  string          `json:"merchantId,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	IsActive    bool            `json:"isActive"`
}

// GetID implementa Identifiable.
func (p Promo) GetID() string { return p.ID }
