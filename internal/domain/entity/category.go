package entity

// Category categoría de comercio (GET /merchants/categories).
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// GetID implementa Identifiable.
func (c Category) GetID() string { return c.ID }
