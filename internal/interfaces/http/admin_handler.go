package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/dto"
	"github.com/jhoicas/loyalty-console/internal/application/viewmodel"
)

// AdminHandler operaciones del panel de administración fuera del CRUD genérico.
type AdminHandler struct {
	money viewmodel.Money
}

// NewAdminHandler construye el handler.
func NewAdminHandler(money viewmodel.Money) *AdminHandler {
	return &AdminHandler{money: money}
}

// Dashboard GET /console/admin/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	view, err := console.AdminDashboard(c.UserContext(), GetSession(c), h.money)
	if err != nil {
		return respondError(c, err, true)
	}
	return c.JSON(view)
}

// Approve POST /console/admin/merchants/pending/:id/approve
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	if err := console.ApproveMerchant(c.UserContext(), GetSession(c), c.Params("id")); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true})
}

// Reject POST /console/admin/merchants/pending/:id/reject {reason}
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "cuerpo inválido")
		}
	}
	if err := console.RejectMerchant(c.UserContext(), GetSession(c), c.Params("id"), in.Reason); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true})
}

// TopUp POST /console/admin/merchants/:id/wallet/topup {amount}
func (h *AdminHandler) TopUp(c *fiber.Ctx) error {
	var in dto.AmountRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := console.TopUpWallet(c.UserContext(), GetSession(c), c.Params("id"), in.Amount); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true, "amount": h.money.Format(in.Amount)})
}

// Currency PATCH /console/admin/settings/currency {code}
func (h *AdminHandler) Currency(c *fiber.Ctx) error {
	var in dto.CurrencyRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := console.UpdateCurrency(c.UserContext(), GetSession(c), in.Code); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true})
}

// InitializeSettings POST /console/admin/globalsettings/initialize
func (h *AdminHandler) InitializeSettings(c *fiber.Ctx) error {
	if err := console.InitializeGlobalSettings(c.UserContext(), GetSession(c)); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true})
}
