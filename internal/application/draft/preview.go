package draft

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// PreviewPrefix prefijo de las URLs de vista previa.
const PreviewPrefix = "preview:"

// PreviewRegistry guarda los archivos adjuntos mientras su vista previa está viva.
// Se sirve desde GET /console/previews/:id hasta que se revoca.
type PreviewRegistry struct {
	mu    sync.RWMutex
	files map[string]File
}

// NewPreviewRegistry construye un registro vacío.
func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{files: make(map[string]File)}
}

// Register guarda f y devuelve su URL preview:<uuid>.
func (r *PreviewRegistry) Register(f File) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.files[id] = f
	r.mu.Unlock()
	return PreviewPrefix + id
}

// Lookup devuelve el archivo de url (acepta la URL completa o solo el id).
func (r *PreviewRegistry) Lookup(url string) (File, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[strings.TrimPrefix(url, PreviewPrefix)]
	return f, ok
}

// Revoke libera la vista previa. Revocar dos veces es no-op.
func (r *PreviewRegistry) Revoke(url string) {
	r.mu.Lock()
	delete(r.files, strings.TrimPrefix(url, PreviewPrefix))
	r.mu.Unlock()
}

// Len vistas previas vivas.
func (r *PreviewRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}
