package console

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/loyalty-console/internal/application/draft"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/resource"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

const minPasswordLen = 6

var hundred = decimal.NewFromInt(100)

// SubmitDraft envía el borrador por ctrl: alta si se abrió con OpenCreate, edición si
// con OpenEdit. Tras el éxito el borrador se descarta y sus vistas previas se revocan;
// si falla queda abierto para corregirlo.
func SubmitDraft[T any](ctx context.Context, s *Session, ctrl *resource.Controller[T], h draft.Handle) error {
	d, ok := s.Drafts.Get(h)
	if !ok {
		return draft.ErrUnknownDraft
	}
	payload, err := s.Drafts.Materialize(h)
	if err != nil {
		return err
	}
	if d.Mode == draft.ModeEdit {
		err = ctrl.Update(ctx, d.TargetID, payload)
	} else {
		err = ctrl.Create(ctx, payload)
	}
	if err != nil {
		return err
	}
	s.Drafts.Discard(h)
	return nil
}

// TopUpWallet recarga el saldo del comercio.
func TopUpWallet(ctx context.Context, s *Session, merchantID string, amt decimal.Decimal) error {
	if merchantID == "" {
		return invalid("comercio requerido")
	}
	if !amt.IsPositive() {
		return invalid("el monto debe ser mayor a cero")
	}
	ctrl := Resource[entity.Merchant](s, MerchantProfile(merchantID))
	_, err := ctrl.Action(ctx, merchantID, http.MethodPost, "wallet/topup", map[string]any{"amount": amount(amt)})
	return err
}

// SetRewardsPercentage fija el porcentaje de recompensa (0 a 100).
func SetRewardsPercentage(ctx context.Context, s *Session, merchantID string, pct decimal.Decimal) error {
	if merchantID == "" {
		return invalid("comercio requerido")
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return invalid("el porcentaje debe estar entre 0 y 100")
	}
	ctrl := Resource[entity.RewardsSetting](s, RewardsPercentage(merchantID))
	_, err := ctrl.Action(ctx, "", http.MethodPut, "", map[string]any{"percentage": amount(pct)})
	return err
}

// ApproveMerchant aprueba una solicitud pendiente.
func ApproveMerchant(ctx context.Context, s *Session, id string) error {
	_, err := Resource[entity.Merchant](s, PendingMerchants).Action(ctx, id, http.MethodPost, "approve", nil)
	return err
}

// RejectMerchant rechaza una solicitud pendiente con un motivo opcional.
func RejectMerchant(ctx context.Context, s *Session, id, reason string) error {
	var body any
	if reason = strings.TrimSpace(reason); reason != "" {
		body = map[string]any{"reason": reason}
	}
	_, err := Resource[entity.Merchant](s, PendingMerchants).Action(ctx, id, http.MethodPost, "reject", body)
	return err
}

// UploadMerchantImage sube el logo o el banner del comercio (multipart).
func UploadMerchantImage(ctx context.Context, s *Session, merchantID, kind string, f draft.File) error {
	if kind != "logo" && kind != "banner" {
		return invalid("tipo de imagen no soportado: " + kind)
	}
	if merchantID == "" || len(f.Content) == 0 {
		return invalid("archivo vacío")
	}
	body := ports.Multipart{Files: []ports.FilePart{{
		Field: kind, Filename: f.Filename, ContentType: f.ContentType, Content: f.Content,
	}}}
	_, err := Resource[entity.Merchant](s, MerchantProfile(merchantID)).Action(ctx, merchantID, http.MethodPost, kind, body)
	return err
}

// UpdateProfile PUT /auth/profile.
func UpdateProfile(ctx context.Context, s *Session, payload map[string]any) error {
	if len(payload) == 0 {
		return invalid("nada que actualizar")
	}
	return Resource[entity.Profile](s, Profile).Update(ctx, "profile", payload)
}

// ChangePassword PUT /auth/change-password.
func ChangePassword(ctx context.Context, s *Session, current, next string) error {
	switch {
	case current == "" || next == "":
		return invalid("contraseña actual y nueva requeridas")
	case len(next) < minPasswordLen:
		return invalid("la nueva contraseña debe tener al menos 6 caracteres")
	case current == next:
		return invalid("la nueva contraseña debe ser distinta de la actual")
	}
	body := map[string]any{"currentPassword": current, "newPassword": next}
	_, err := Resource[entity.Profile](s, Profile).Action(ctx, "change-password", http.MethodPut, "", body)
	return err
}

// UpdateCurrency PATCH /settings/currency.
func UpdateCurrency(ctx context.Context, s *Session, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return invalid("código de moneda ISO inválido")
	}
	_, err := Resource[entity.CurrencySetting](s, CurrencySetting).Action(ctx, "", http.MethodPatch, "", map[string]any{"code": code})
	return err
}

// InitializeGlobalSettings POST /globalsettings/initialize.
func InitializeGlobalSettings(ctx context.Context, s *Session) error {
	_, err := Resource[entity.GlobalSetting](s, GlobalSettings).Action(ctx, "", http.MethodPost, "initialize", nil)
	return err
}
