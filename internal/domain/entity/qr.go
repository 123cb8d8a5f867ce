package entity

import "github.com/shopspring/decimal"

// QRScanResult respuesta de POST /qr-payments/scan: el cliente dueño del código.
type QRScanResult struct {
	Code         string          `json:"code"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Points       decimal.Decimal `json:"points"`
	LoyaltyLevel string          `json:"loyaltyLevel,omitempty"`
}

// QRPaymentResult respuesta de POST /qr-payments/process.
type QRPaymentResult struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	PointsEarned  decimal.Decimal `json:"pointsEarned"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
}
