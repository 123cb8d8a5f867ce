package entity

// Identifiable lo implementan los recursos que la API identifica por _id.
type Identifiable interface {
	GetID() string
}

// Etiquetas de estado activo/inactivo que usan las tablas y los conteos.
const (
	LabelActive   = "active"
	LabelInactive = "inactive"
)

// ActiveLabel etiqueta de un registro según su isActive.
func ActiveLabel(active bool) string {
	if active {
		return LabelActive
	}
	return LabelInactive
}
