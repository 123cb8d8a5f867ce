package resource

import (
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain"
)

// Status etiqueta del estado del recurso. Exactamente uno vale en cada momento.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// State es la unión etiquetada Idle | Loading | Ready(items, pagination) | Failed(err).
// Items y Pagination solo tienen sentido en Ready; Err solo en Failed.
type State[T any] struct {
	Status     Status
	Items      []T
	Pagination *ports.Pagination
	Err        *domain.Error
}

func idle[T any]() State[T]    { return State[T]{Status: Idle} }
func loading[T any]() State[T] { return State[T]{Status: Loading} }

func ready[T any](items []T, p *ports.Pagination) State[T] {
	if items == nil {
		items = []T{}
	}
	return State[T]{Status: Ready, Items: items, Pagination: p}
}

func failed[T any](err *domain.Error) State[T] {
	return State[T]{Status: Failed, Err: err}
}

// clone copia el slice para que el llamador no comparta memoria con el controlador.
func (s State[T]) clone() State[T] {
	out := s
	if s.Items != nil {
		out.Items = append(make([]T, 0, len(s.Items)), s.Items...)
	}
	if s.Pagination != nil {
		p := *s.Pagination
		out.Pagination = &p
	}
	return out
}

// First devuelve el primer elemento en Ready (recursos de una sola entidad).
func (s State[T]) First() (T, bool) {
	var zero T
	if s.Status != Ready || len(s.Items) == 0 {
		return zero, false
	}
	return s.Items[0], true
}

// Result devuelve los items si el estado es Ready, el error si es Failed,
// y ErrSuperseded mientras otro fetch sigue en curso.
func (s State[T]) Result() ([]T, error) {
	switch s.Status {
	case Ready:
		return s.Items, nil
	case Failed:
		return nil, s.Err
	}
	return nil, ErrSuperseded
}
