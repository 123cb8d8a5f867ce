// Package credential centraliza la credencial de la sesión: la entrega a cada
// petición, detecta su ausencia y la invalida ante un 401 o un logout.
package credential

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
	pkgjwt "github.com/jhoicas/loyalty-console/pkg/jwt"
)

var _ ports.CredentialSource = (*Provider)(nil)

// Motivos de invalidación.
const (
	ReasonExpired      = "expired"      // exp del token vencido antes de enviar
	ReasonUnauthorized = "unauthorized" // la API respondió 401
	ReasonLogout       = "logout"
)

// Invalidation describe una credencial descartada; se entrega a los listeners.
type Invalidation struct {
	Credential entity.Credential
	Reason     string
	At         time.Time
}

// Provider guarda la credencial vigente. Es el único escritor: las páginas solo leen.
// Get nunca falla; la ausencia es un valor (false), no un error.
type Provider struct {
	mu        sync.RWMutex
	cred      *entity.Credential
	listeners []func(Invalidation)
	now       func() time.Time
}

// NewProvider construye un proveedor vacío (sin sesión).
func NewProvider() *Provider {
	return &Provider{now: time.Now}
}

// NewProviderWith construye un proveedor con una credencial ya emitida.
func NewProviderWith(cred entity.Credential) *Provider {
	p := NewProvider()
	p.Set(cred)
	return p
}

// FromToken decodifica un bearer emitido por la API en una Credential.
func FromToken(parser *pkgjwt.Parser, token string) (entity.Credential, error) {
	claims, err := parser.Claims(token)
	if err != nil {
		if errors.Is(err, pkgjwt.ErrTokenExpired) {
			return entity.Credential{}, domain.NewError(domain.KindAuthExpired, "", 0, err)
		}
		return entity.Credential{}, domain.NewError(domain.KindAuthMissing, "token inválido", 0, err)
	}
	if !entity.ValidRole(claims.Role) {
		return entity.Credential{}, domain.NewError(domain.KindAuthMissing,
			fmt.Sprintf("rol %q no tiene acceso a la consola", claims.Role), 0, nil)
	}
	return entity.Credential{
		Token:     token,
		Role:      claims.Role,
		SubjectID: claims.SubjectID(),
		ExpiresAt: claims.Expiry(),
	}, nil
}

// Set instala la credencial (frontera de login, externa al núcleo).
func (p *Provider) Set(cred entity.Credential) {
	p.mu.Lock()
	c := cred
	p.cred = &c
	p.mu.Unlock()
}

// Get devuelve la credencial vigente. Si su exp ya venció se invalida y se reporta ausencia.
func (p *Provider) Get() (entity.Credential, bool) {
	p.mu.RLock()
	cred := p.cred
	p.mu.RUnlock()
	if cred == nil {
		return entity.Credential{}, false
	}
	if cred.Expired(p.now()) {
		p.Invalidate(ReasonExpired)
		return entity.Credential{}, false
	}
	return *cred, true
}

// Token implementa ports.CredentialSource.
func (p *Provider) Token() (string, bool) {
	cred, ok := p.Get()
	if !ok || cred.Token == "" {
		return "", false
	}
	return cred.Token, true
}

// Invalidate descarta la credencial y notifica a los listeners una sola vez.
// Llamadas posteriores sin credencial son no-op.
func (p *Provider) Invalidate(reason string) {
	p.mu.Lock()
	if p.cred == nil {
		p.mu.Unlock()
		return
	}
	ev := Invalidation{Credential: *p.cred, Reason: reason, At: p.now()}
	p.cred = nil
	listeners := append([]func(Invalidation){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// Logout equivale a Invalidate(ReasonLogout).
func (p *Provider) Logout() { p.Invalidate(ReasonLogout) }

// OnInvalidate registra un listener (ej. la página que redirige a /login).
func (p *Provider) OnInvalidate(fn func(Invalidation)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}
