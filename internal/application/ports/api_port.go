package ports

import (
	"context"
	"encoding/json"
)

// APIClient define el puerto de salida hacia la API REST de lealtad.
// Lo implementa *apiclient.Client; los controladores de recursos solo conocen
// este contrato, lo que permite probarlos con un servidor falso o un doble.
type APIClient interface {
	// Request ejecuta method sobre path (relativo a /api/v1) y devuelve el sobre decodificado.
	// body puede ser nil, un valor serializable a JSON o un Multipart.
	// Un sobre con Success=false NO es error: la decisión queda en el llamador.
	Request(ctx context.Context, method, path string, body any) (*Envelope, error)
}

// Envelope es el sobre {success, data, message, pagination} de todas las respuestas.
// Con Success=false, Data no es confiable aunque venga poblado.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Status     int             `json:"-"` // código HTTP con el que llegó
}

// Pagination metadatos de página que devuelve la API.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Multipart cuerpo de formulario con archivos. El cliente HTTP se encarga de la
// codificación y del Content-Type (boundary); los llamadores nunca la construyen.
type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

// FilePart archivo adjunto de un Multipart.
type FilePart struct {
	Field       string // nombre del campo: image, logo, banner...
	Filename    string
	ContentType string
	Content     []byte
}

// CredentialSource es lo que el cliente HTTP necesita del proveedor de credenciales.
type CredentialSource interface {
	// Token devuelve el bearer vigente; false si no hay sesión.
	Token() (string, bool)
	// Invalidate descarta la credencial tras un 401 de la API.
	Invalidate(reason string)
}
