package console

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain"
)

// call ejecuta una petición fuera de un controlador (pasos del asistente QR) y
// decodifica data en out. Sobre con success=false → error de dominio con el mensaje literal.
func call(ctx context.Context, api ports.APIClient, method, path string, body, out any) error {
	env, err := api.Request(ctx, method, path, body)
	if err != nil {
		return domain.AsError(err)
	}
	if !env.Success {
		return domain.NewError(domain.KindDomain, env.Message, env.Status, nil)
	}
	data := bytes.TrimSpace(env.Data)
	if out == nil || len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewError(domain.KindMalformed, "", env.Status, err)
	}
	return nil
}

// amount serializa un monto como número JSON sin pasar por float.
func amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func invalid(msg string) *domain.Error {
	return domain.NewError(domain.KindValidation, msg, 0, nil)
}
