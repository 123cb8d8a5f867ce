package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de aprobación de un comercio.
const (
	MerchantApproved = "approved"
	MerchantPending  = "pending"
	MerchantRejected = "rejected"
)

// Merchant representa un comercio afiliado al programa.
type Merchant struct {
	ID                string          `json:"_id"`
	BusinessName      string          `json:"businessName"`
	OwnerName         string          `json:"ownerName,omitempty"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone,omitempty"`
	Address           string          `json:"address,omitempty"`
	Category          string          `json:"category,omitempty"`
	Description       string          `json:"description,omitempty"`
	LogoURL           string          `json:"logo,omitempty"`
	BannerURL         string          `json:"banner,omitempty"`
	Status            string          `json:"status"` // approved | pending | rejected
	IsActive          bool            `json:"isActive"`
	WalletBalance     decimal.Decimal `json:"walletBalance"`
	RewardsPercentage decimal.Decimal `json:"rewardsPercentage"`
	TransactionCount  int             `json:"transactionCount"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// GetID implementa Identifiable.
func (m Merchant) GetID() string { return m.ID }

// MerchantDashboard resumen que la API calcula para el panel del comercio.
type MerchantDashboard struct {
	WalletBalance      decimal.Decimal `json:"walletBalance"`
	TotalCustomers     int             `json:"totalCustomers"`
	TotalTransactions  int             `json:"totalTransactions"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	PointsIssued       decimal.Decimal `json:"pointsIssued"`
	RewardsPercentage  decimal.Decimal `json:"rewardsPercentage"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}

// RewardsSetting porcentaje de recompensa (GET/PUT /merchants/:id/rewards/percentage).
type RewardsSetting struct {
	Percentage decimal.Decimal `json:"percentage"`
}
