package entity

import "time"

// CMSPage contenido editable (términos, FAQ, about...).
type CMSPage struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Type      string    `json:"type,omitempty"`
	Priority  int       `json:"priority"`
	Status    string    `json:"status"` // active | inactive
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetID implementa Identifiable.
func (p CMSPage) GetID() string { return p.ID }
