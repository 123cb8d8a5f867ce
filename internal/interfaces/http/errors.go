package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/internal/application/draft"
	"github.com/jhoicas/loyalty-console/internal/application/dto"
	"github.com/jhoicas/loyalty-console/internal/application/resource"
	"github.com/jhoicas/loyalty-console/internal/domain"
)

// respondError traduce err a status y dto.ErrorResponse. Los 401 llevan redirect a login;
// con retry=true (fallos de consulta) se agrega retry_url para reintentar.
func respondError(c *fiber.Ctx, err error, retry bool) error {
	switch {
	case errors.Is(err, draft.ErrUnknownDraft):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "DRAFT_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, resource.ErrClosed):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "SESSION_EXPIRED", Message: domain.ErrAuthExpired.Error(), Redirect: loginPath,
		})
	case errors.Is(err, resource.ErrSuperseded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "STALE_REQUEST", Message: err.Error(), RetryURL: c.OriginalURL(),
		})
	case errors.Is(err, domain.ErrNotConfirmed):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "CONFIRMATION_REQUIRED", Message: domain.ErrNotConfirmed.Error(),
		})
	}

	de := domain.AsError(err)
	status, code := statusFor(de)
	body := dto.ErrorResponse{Code: code, Message: de.Text()}
	if de.Kind.IsAuth() {
		body.Redirect = loginPath
	} else if retry {
		body.RetryURL = c.OriginalURL()
	}
	return c.Status(status).JSON(body)
}

func statusFor(de *domain.Error) (int, string) {
	switch de.Kind {
	case domain.KindAuthMissing:
		return fiber.StatusUnauthorized, "AUTH_REQUIRED"
	case domain.KindAuthExpired:
		return fiber.StatusUnauthorized, "SESSION_EXPIRED"
	case domain.KindValidation:
		return fiber.StatusBadRequest, "VALIDATION"
	case domain.KindAlreadyInProgress:
		return fiber.StatusConflict, "ALREADY_IN_PROGRESS"
	case domain.KindDomain:
		if de.Status >= 400 && de.Status < 500 {
			return de.Status, "REJECTED"
		}
		return fiber.StatusBadGateway, "REJECTED"
	case domain.KindTimeout:
		return fiber.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	case domain.KindMalformed:
		return fiber.StatusBadGateway, "UPSTREAM_MALFORMED"
	}
	return fiber.StatusServiceUnavailable, "UPSTREAM_UNREACHABLE"
}

// badRequest cuerpo inválido en la propia consola.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: msg})
}
