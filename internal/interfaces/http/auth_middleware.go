package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/dto"
)

// Locals keys de la sesión en Fiber.
const (
	LocalSession = "console_session"
	LocalToken   = "console_token"
)

// loginPath destino al que la página debe navegar ante un 401.
const loginPath = "/login"

// SessionMiddleware lee el Bearer Token, abre (o recupera) la sesión de consola
// y la deja en c.Locals. Sin token responde 401 AUTH_REQUIRED; con un token revocado
// o vencido, 401 SESSION_EXPIRED. En ambos casos indica redirect a /login.
func SessionMiddleware(reg *console.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "AUTH_REQUIRED", Message: "Authorization header requerido", Redirect: loginPath,
			})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "AUTH_REQUIRED", Message: "formato: Bearer <token>", Redirect: loginPath,
			})
		}
		token := strings.TrimSpace(parts[1])

		s, err := reg.Open(token)
		if err != nil {
			return respondError(c, err, false)
		}
		c.Locals(LocalSession, s)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// RequireRole permite el paso solo a las sesiones con alguno de roles.
// Debe usarse DESPUÉS de SessionMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := GetSession(c)
		if s == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "AUTH_REQUIRED", Message: "sesión no iniciada", Redirect: loginPath,
			})
		}
		for _, r := range roles {
			if s.Role() == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code: "FORBIDDEN", Message: "el rol '" + s.Role() + "' no tiene acceso a este panel",
		})
	}
}

// GetSession devuelve la sesión del contexto (después de SessionMiddleware).
func GetSession(c *fiber.Ctx) *console.Session {
	s, _ := c.Locals(LocalSession).(*console.Session)
	return s
}

// GetRole devuelve el rol de la sesión o "".
func GetRole(c *fiber.Ctx) string {
	if s := GetSession(c); s != nil {
		return s.Role()
	}
	return ""
}

func getToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalToken).(string)
	return s
}
