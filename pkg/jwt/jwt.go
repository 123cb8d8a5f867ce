package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims que la API de lealtad incluye en sus tokens.
// La consola solo los lee: role decide el panel (admin | merchant) y MerchantID
// identifica el comercio dueño de la sesión en el panel de comercio.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	MerchantID string `json:"merchant_id,omitempty"`
	Role       string `json:"role"`
}

// SubjectID devuelve el identificador del sujeto: el comercio para role=merchant,
// si no el usuario, y como último recurso el claim sub.
func (c *Claims) SubjectID() string {
	if c.Role == "merchant" && c.MerchantID != "" {
		return c.MerchantID
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// Expiry devuelve la expiración o el tiempo cero si el token no la declara.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Generate genera un token firmado HS256. Solo lo usan los tests y el entorno de desarrollo;
// en producción los tokens los emite la API.
func Generate(secret, userID, merchantID, role string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:     userID,
		MerchantID: merchantID,
		Role:       role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve los claims.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}

// ParseUnverified decodifica los claims sin verificar la firma.
// La firma la valida la API en cada petición; aquí solo interesan role, sujeto y exp.
// Un token ya expirado devuelve los claims junto con ErrTokenExpired.
func ParseUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("jwt: token malformado: %w", err)
	}
	if exp := claims.Expiry(); !exp.IsZero() && time.Now().After(exp) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

// ErrTokenExpired el token ya venció según su claim exp.
var ErrTokenExpired = errors.New("jwt: token expirado")

// Parser elige entre verificación completa (si hay secreto) o decodificación sin firma.
type Parser struct {
	secret string
}

// NewParser construye el parser; secret vacío = ParseUnverified.
func NewParser(secret string) *Parser {
	return &Parser{secret: secret}
}

// Claims decodifica el token según la configuración del parser.
func (p *Parser) Claims(tokenString string) (*Claims, error) {
	if p.secret == "" {
		return ParseUnverified(tokenString)
	}
	claims, err := Parse(p.secret, tokenString)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	return claims, err
}
