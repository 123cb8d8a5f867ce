package entity

import "time"

// CurrencySetting moneda activa de la plataforma (GET/PATCH /settings/currency).
type CurrencySetting struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// GlobalSetting par clave/valor de configuración global (/globalsettings).
type GlobalSetting struct {
	ID          string    `json:"_id"`
	Key         string    `json:"key"`
	Value       any       `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetID implementa Identifiable. Los ajustes globales se direccionan por clave.
func (s GlobalSetting) GetID() string { return s.Key }
