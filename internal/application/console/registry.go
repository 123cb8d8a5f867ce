package console

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/loyalty-console/internal/application/credential"
	"github.com/jhoicas/loyalty-console/internal/application/draft"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/resource"
	"github.com/jhoicas/loyalty-console/internal/domain"
	pkgjwt "github.com/jhoicas/loyalty-console/pkg/jwt"
	"github.com/jhoicas/loyalty-console/pkg/logger"
	"github.com/jhoicas/loyalty-console/pkg/metrics"
)

// revokedTTL cuánto se recuerda un token revocado que no declara exp.
const revokedTTL = 24 * time.Hour

// ClientFactory liga el cliente HTTP compartido a la credencial de una sesión.
type ClientFactory func(src ports.CredentialSource) ports.APIClient

// RegistryOptions dependencias opcionales del registro.
type RegistryOptions struct {
	Logger   *logger.Logger
	Metrics  *metrics.Collector
	Previews *draft.PreviewRegistry
}

// Registry sesiones abiertas indexadas por token. Un token invalidado (401 de la API
// o logout) queda revocado: no vuelve a abrir sesión hasta su expiración.
type Registry struct {
	parser    *pkgjwt.Parser
	newClient ClientFactory
	previews  *draft.PreviewRegistry
	log       *logger.Logger
	metrics   *metrics.Collector
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	revoked  map[string]time.Time
}

// NewRegistry construye el registro.
func NewRegistry(parser *pkgjwt.Parser, newClient ClientFactory, opts RegistryOptions) *Registry {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	previews := opts.Previews
	if previews == nil {
		previews = draft.NewPreviewRegistry()
	}
	return &Registry{
		parser:    parser,
		newClient: newClient,
		previews:  previews,
		log:       log.Named("sessions"),
		metrics:   opts.Metrics,
		now:       time.Now,
		sessions:  make(map[string]*Session),
		revoked:   make(map[string]time.Time),
	}
}

// Previews registro de vistas previas compartido por las sesiones.
func (r *Registry) Previews() *draft.PreviewRegistry { return r.previews }

// Open devuelve la sesión del token, creándola si hace falta.
// Token revocado o vencido: auth.expired. Token ilegible o rol ajeno: auth.missing.
func (r *Registry) Open(token string) (*Session, error) {
	if token == "" {
		return nil, domain.NewError(domain.KindAuthMissing, "", 0, nil)
	}
	r.mu.Lock()
	if until, ok := r.revoked[token]; ok && r.now().Before(until) {
		r.mu.Unlock()
		return nil, domain.NewError(domain.KindAuthExpired, "", 0, nil)
	}
	s, ok := r.sessions[token]
	r.mu.Unlock()
	if ok {
		if s.Active() {
			return s, nil
		}
		return nil, domain.NewError(domain.KindAuthExpired, "", 0, nil)
	}

	cred, err := credential.FromToken(r.parser, token)
	if err != nil {
		return nil, err
	}
	p := credential.NewProviderWith(cred)
	s = newSession(uuid.NewString(), cred, p, r.newClient(p), r.previews,
		[]resource.Option{resource.WithLogger(r.log), resource.WithMetrics(r.metrics)})

	// el listener va antes de publicar la sesión: un 401 de otra petición que ya la
	// ve debe cerrarla
	p.OnInvalidate(func(inv credential.Invalidation) { r.drop(token, s, inv) })

	r.mu.Lock()
	if existing, ok := r.sessions[token]; ok {
		// otra petición abrió la misma sesión mientras tanto
		r.mu.Unlock()
		return existing, nil
	}
	r.sessions[token] = s
	r.mu.Unlock()

	r.metrics.SessionOpened()
	r.log.Session(s.ID, cred.Role).Info().Str("subject", cred.SubjectID).Msg("sesión abierta")
	return s, nil
}

// Logout invalida la sesión del token. Devuelve false si no existía.
func (r *Registry) Logout(token string) bool {
	r.mu.Lock()
	s, ok := r.sessions[token]
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.Provider.Logout()
	return true
}

// Len sesiones abiertas.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep cierra las sesiones con credencial vencida y olvida revocaciones caducadas.
func (r *Registry) Sweep() {
	r.mu.Lock()
	now := r.now()
	for tok, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, tok)
		}
	}
	open := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		open = append(open, s)
	}
	r.mu.Unlock()

	// Get invalida las credenciales vencidas; drop hace el resto.
	for _, s := range open {
		s.Active()
	}
}

func (r *Registry) drop(token string, s *Session, inv credential.Invalidation) {
	r.mu.Lock()
	current, ok := r.sessions[token]
	ok = ok && current == s
	if ok {
		delete(r.sessions, token)
	}
	if inv.Reason != credential.ReasonExpired {
		until := inv.Credential.ExpiresAt
		if until.IsZero() {
			until = r.now().Add(revokedTTL)
		}
		r.revoked[token] = until
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	r.metrics.CredentialInvalidated(inv.Reason)
	r.metrics.SessionClosed()
	r.log.Session(s.ID, s.Role()).Info().Str("reason", inv.Reason).Msg("sesión cerrada")
	s.Close()
}
