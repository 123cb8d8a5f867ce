package viewmodel

import (
	"encoding/json"

	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

// UnknownLabel texto para datos que la API todavía no provee.
const UnknownLabel = "N/A"

// Optional valor que la API puede no proveer (tier, crecimiento). No se inventa:
// si falta, la vista muestra UnknownLabel.
type Optional[T any] struct {
	Value T
	Known bool
}

// Known envuelve un valor provisto por la API.
func Known[T any](v T) Optional[T] { return Optional[T]{Value: v, Known: true} }

// Unknown valor ausente.
func Unknown[T any]() Optional[T] { return Optional[T]{} }

// Or devuelve el valor o def.
func (o Optional[T]) Or(def T) T {
	if !o.Known {
		return def
	}
	return o.Value
}

// MarshalJSON serializa null cuando el valor es desconocido.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Known {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// CustomerTier nivel del cliente tal como lo envía la API.
func CustomerTier(c entity.Customer) Optional[string] {
	if c.Tier == nil || *c.Tier == "" {
		return Unknown[string]()
	}
	return Known(*c.Tier)
}

// Growth variación porcentual entre dos periodos. La API no expone el periodo
// anterior, así que hoy siempre es desconocida.
func Growth() Optional[float64] { return Unknown[float64]() }
