package entity

import "time"

// Profile datos del usuario autenticado (GET /auth/me).
type Profile struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Role       string    `json:"role"`
	MerchantID string    `json:"merchantId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetID implementa Identifiable.
func (p Profile) GetID() string { return p.ID }
