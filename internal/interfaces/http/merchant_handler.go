package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/dto"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/viewmodel"
)

// MerchantHandler operaciones del panel del comercio. El comercio siempre es el
// de la sesión; nunca se toma de la URL.
type MerchantHandler struct {
	money      viewmodel.Money
	statements ports.StatementRenderer
}

// NewMerchantHandler construye el handler.
func NewMerchantHandler(money viewmodel.Money, statements ports.StatementRenderer) *MerchantHandler {
	return &MerchantHandler{money: money, statements: statements}
}

// Dashboard GET /console/merchant/dashboard
func (h *MerchantHandler) Dashboard(c *fiber.Ctx) error {
	s := GetSession(c)
	view, err := console.MerchantDashboardFor(c.UserContext(), s, s.SubjectID(), h.money)
	if err != nil {
		return respondError(c, err, true)
	}
	return c.JSON(view)
}

// UploadImage POST /console/merchant/profile/:kind (logo | banner, multipart "file")
func (h *MerchantHandler) UploadImage(c *fiber.Ctx) error {
	f, err := formFile(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	s := GetSession(c)
	if err := console.UploadMerchantImage(c.UserContext(), s, s.SubjectID(), c.Params("kind"), f); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true})
}

// TopUp POST /console/merchant/wallet/topup {amount}
func (h *MerchantHandler) TopUp(c *fiber.Ctx) error {
	var in dto.AmountRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	s := GetSession(c)
	if err := console.TopUpWallet(c.UserContext(), s, s.SubjectID(), in.Amount); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true, "amount": h.money.Format(in.Amount)})
}

// Rewards PUT /console/merchant/rewards {percentage}
func (h *MerchantHandler) Rewards(c *fiber.Ctx) error {
	var in dto.PercentageRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	s := GetSession(c)
	if err := console.SetRewardsPercentage(c.UserContext(), s, s.SubjectID(), in.Percentage); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true})
}

// Statement GET /console/merchant/transactions/statement.pdf
func (h *MerchantHandler) Statement(c *fiber.Ctx) error {
	s := GetSession(c)
	pdf, filename, err := console.Statement(c.UserContext(), s, s.SubjectID(), h.money.Code(), h.statements)
	if err != nil {
		return respondError(c, err, true)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// QRState GET /console/merchant/qr
func (h *MerchantHandler) QRState(c *fiber.Ctx) error {
	return c.JSON(GetSession(c).QR.State())
}

// QRScan POST /console/merchant/qr/scan {code}
func (h *MerchantHandler) QRScan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	qr := GetSession(c).QR
	if _, err := qr.Scan(c.UserContext(), in.Code); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(qr.State())
}

// QRCharge POST /console/merchant/qr/charge {amount}
func (h *MerchantHandler) QRCharge(c *fiber.Ctx) error {
	var in dto.AmountRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	qr := GetSession(c).QR
	if _, err := qr.Charge(c.UserContext(), in.Amount); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(qr.State())
}

// QRReset DELETE /console/merchant/qr
func (h *MerchantHandler) QRReset(c *fiber.Ctx) error {
	qr := GetSession(c).QR
	qr.Reset()
	return c.JSON(qr.State())
}
