package dto

import "github.com/jhoicas/loyalty-console/internal/application/ports"

// PageRequest paginación y búsqueda para listados.
type PageRequest struct {
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Query string `query:"q"`
}

// DefaultPage aplica valores por defecto si Page/Limit son inválidos.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit < 0 || p.Limit > 100 {
		p.Limit = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// PageFrom copia la paginación del sobre de la API.
func PageFrom(p *ports.Pagination) *PageResponse {
	if p == nil {
		return nil
	}
	return &PageResponse{Page: p.Page, Limit: p.Limit, Total: p.Total, Pages: p.Pages}
}

// ErrorResponse cuerpo de error HTTP.
// Redirect acompaña a los 401 (ir a login); RetryURL a los fallos de consulta.
type ErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
	RetryURL string `json:"retry_url,omitempty"`
}
