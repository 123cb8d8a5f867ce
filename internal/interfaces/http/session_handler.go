package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/dto"
)

// SessionHandler sesión actual, logout y cuenta del usuario.
type SessionHandler struct {
	reg *console.Registry
}

// NewSessionHandler construye el handler.
func NewSessionHandler(reg *console.Registry) *SessionHandler {
	return &SessionHandler{reg: reg}
}

// Current GET /console/session
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	s := GetSession(c)
	return c.JSON(dto.SessionResponse{SessionID: s.ID, Role: s.Role(), SubjectID: s.SubjectID()})
}

// Logout POST /console/logout. Cierra la sesión y revoca el token en la consola.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.reg.Logout(getToken(c))
	return c.JSON(fiber.Map{"success": true, "redirect": loginPath})
}

// UpdateProfile PUT /console/profile
func (h *SessionHandler) UpdateProfile(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := console.UpdateProfile(c.UserContext(), GetSession(c), body); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ChangePassword PUT /console/password
func (h *SessionHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.PasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := console.ChangePassword(c.UserContext(), GetSession(c), in.CurrentPassword, in.NewPassword); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true})
}
