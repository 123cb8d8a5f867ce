package dto

import "github.com/shopspring/decimal"

// ResourceView estado de un recurso tal como lo ve la página.
type ResourceView[T any] struct {
	Status     string         `json:"status"`
	Items      []T            `json:"items"`
	Pagination *PageResponse  `json:"pagination,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
	InFlight   []string       `json:"inFlight,omitempty"`
}

// MutationResponse respuesta de una mutación exitosa con la vista ya reconciliada.
type MutationResponse[T any] struct {
	Success bool            `json:"success"`
	View    ResourceView[T] `json:"view"`
}

// SessionResponse datos de la sesión actual.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	SubjectID string `json:"subjectId"`
}

// ToggleRequest cambia un único campo (ej. isActive).
type ToggleRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// AmountRequest recarga de saldo o cobro QR.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// PercentageRequest porcentaje de recompensa.
type PercentageRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
}

// RejectRequest motivo de rechazo de un comercio.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ScanRequest código QR escaneado.
type ScanRequest struct {
	Code string `json:"code"`
}

// PasswordRequest cambio de contraseña.
type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CurrencyRequest moneda de la plataforma.
type CurrencyRequest struct {
	Code string `json:"code"`
}

// OpenDraftRequest abre un borrador de alta (ID vacío) o de edición.
type OpenDraftRequest struct {
	Resource string         `json:"resource"`
	ID       string         `json:"id,omitempty"`
	Initial  map[string]any `json:"initial,omitempty"`
}

// DraftFieldRequest actualiza un campo del borrador.
type DraftFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// DraftResponse borrador abierto.
type DraftResponse struct {
	Handle   string            `json:"handle"`
	Mode     string            `json:"mode"`
	Resource string            `json:"resource"`
	TargetID string            `json:"targetId,omitempty"`
	Values   map[string]any    `json:"values"`
	Previews map[string]string `json:"previews,omitempty"`
}

// PreviewResponse URL de vista previa de un adjunto.
type PreviewResponse struct {
	Field      string `json:"field"`
	PreviewURL string `json:"previewUrl"`
}
