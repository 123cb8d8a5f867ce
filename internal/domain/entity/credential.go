package entity

import "time"

// Roles de la consola.
const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
)

// Credential es la credencial vigente de la sesión. La emite la API al hacer login;
// la consola solo la lee y la descarta ante un 401 o un logout.
type Credential struct {
	Token     string
	Role      string // admin | merchant
	SubjectID string // id del usuario admin o del comercio
	ExpiresAt time.Time
}

// Expired indica si la credencial declara una expiración ya vencida.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ValidRole indica si role es uno de los paneles conocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMerchant
}
