// Package console reúne lo que comparten las páginas de la consola: la sesión por
// credencial con sus controladores de recursos, los tableros, el asistente de cobro QR
// y las operaciones de comercio que validan antes de tocar la API.
package console

import (
	"sync"
	"time"

	"github.com/jhoicas/loyalty-console/internal/application/credential"
	"github.com/jhoicas/loyalty-console/internal/application/draft"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/resource"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

type closer interface{ Close() }

// Session estado de consola de una credencial: un controlador por recurso,
// los borradores de formularios y el asistente QR.
type Session struct {
	ID        string
	Provider  *credential.Provider
	API       ports.APIClient
	Drafts    *draft.Manager
	QR        *QRWizard
	CreatedAt time.Time

	cred entity.Credential
	opts []resource.Option

	mu     sync.Mutex
	ctrls  map[string]closer
	closed bool
}

func newSession(id string, cred entity.Credential, p *credential.Provider, api ports.APIClient,
	previews *draft.PreviewRegistry, opts []resource.Option) *Session {
	return &Session{
		ID:        id,
		Provider:  p,
		API:       api,
		Drafts:    draft.NewManager(previews, nil),
		QR:        NewQRWizard(api),
		CreatedAt: time.Now(),
		cred:      cred,
		opts:      opts,
		ctrls:     make(map[string]closer),
	}
}

// Role rol con el que se abrió la sesión.
func (s *Session) Role() string { return s.cred.Role }

// SubjectID usuario admin o comercio dueño de la sesión.
func (s *Session) SubjectID() string { return s.cred.SubjectID }

// Active indica si la credencial sigue vigente.
func (s *Session) Active() bool {
	_, ok := s.Provider.Get()
	return ok
}

// Resource devuelve el controlador de cfg para la sesión, creándolo la primera vez.
func Resource[T any](s *Session, cfg resource.Config) *resource.Controller[T] {
	key := cfg.Name + " " + cfg.ListPath
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.ctrls[key].(*resource.Controller[T]); ok {
		return c
	}
	c := resource.New[T](s.API, cfg, s.opts...)
	if s.closed {
		c.Close()
	}
	s.ctrls[key] = c
	return c
}

// Close desmonta todos los controladores y descarta los borradores.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ctrls := make([]closer, 0, len(s.ctrls))
	for _, c := range s.ctrls {
		ctrls = append(ctrls, c)
	}
	s.mu.Unlock()

	for _, c := range ctrls {
		c.Close()
	}
	s.Drafts.DiscardAll()
	s.QR.Reset()
}
