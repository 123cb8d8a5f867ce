package entity

import "time"

// Banner representa un banner promocional de la app de clientes.
type Banner struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Link         string    `json:"link,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GetID implementa Identifiable.
func (b Banner) GetID() string { return b.ID }

// StatusLabel texto que muestra la tabla de banners.
func (b Banner) StatusLabel() string { return ActiveLabel(b.IsActive) }
