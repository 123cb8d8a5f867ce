package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/dto"
	"github.com/jhoicas/loyalty-console/internal/application/resource"
	"github.com/jhoicas/loyalty-console/internal/application/viewmodel"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

// reservedQuery parámetros que no se reenvían a la API como filtros.
var reservedQuery = map[string]bool{"page": true, "limit": true, "q": true, "confirm": true}

// ResourceHandler expone un recurso de la API como listado con altas, ediciones,
// bajas y toggles. Cada petición usa el controlador de la sesión, de modo que
// una consulta nueva deja obsoleta a la anterior de la misma sesión.
type ResourceHandler[T any] struct {
	config  func(*fiber.Ctx) resource.Config
	search  []func(T) string
	countBy func(T) string
}

// NewResourceHandler handler para un recurso fijo del catálogo.
func NewResourceHandler[T any](cfg resource.Config) *ResourceHandler[T] {
	return &ResourceHandler[T]{config: func(*fiber.Ctx) resource.Config { return cfg }}
}

// NewMerchantResourceHandler handler para un recurso del comercio autenticado.
func NewMerchantResourceHandler[T any](cfg func(merchantID string) resource.Config) *ResourceHandler[T] {
	return &ResourceHandler[T]{config: func(c *fiber.Ctx) resource.Config {
		return cfg(GetSession(c).SubjectID())
	}}
}

// NewItemResourceHandler handler para la ficha del registro :id de la ruta.
func NewItemResourceHandler[T any](cfg func(id string) resource.Config) *ResourceHandler[T] {
	return &ResourceHandler[T]{config: func(c *fiber.Ctx) resource.Config {
		return cfg(c.Params("id"))
	}}
}

// Searchable campos sobre los que aplica ?q=.
func (h *ResourceHandler[T]) Searchable(fields ...func(T) string) *ResourceHandler[T] {
	h.search = fields
	return h
}

// Counted agrega a la vista el conteo por la clave indicada (estado, tipo...).
func (h *ResourceHandler[T]) Counted(key func(T) string) *ResourceHandler[T] {
	h.countBy = key
	return h
}

func (h *ResourceHandler[T]) controller(c *fiber.Ctx) *resource.Controller[T] {
	return console.Resource[T](GetSession(c), h.config(c))
}

// List GET ?page=&limit=&q=&<filtro>=
func (h *ResourceHandler[T]) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "parámetros de consulta inválidos")
	}
	page.DefaultPage()

	params := resource.Params{Page: page.Page, Limit: page.Limit, Filters: map[string]string{}}
	for k, v := range c.Queries() {
		if !reservedQuery[k] {
			params.Filters[k] = v
		}
	}

	// una consulta reemplazada por otra de la misma sesión responde 409, nunca con
	// los items de la consulta ajena
	ctrl := h.controller(c)
	st, err := ctrl.Load(c.UserContext(), params)
	if err != nil {
		return respondError(c, err, true)
	}
	view, err := h.view(ctrl, st, page.Query)
	if err != nil {
		return respondError(c, err, true)
	}
	return c.JSON(view)
}

// Show GET de un recurso de una sola entidad (perfil, ajustes).
func (h *ResourceHandler[T]) Show(c *fiber.Ctx) error {
	ctrl := h.controller(c)
	st, err := ctrl.Load(c.UserContext(), ctrl.Params())
	if err != nil {
		return respondError(c, err, true)
	}
	item, ok := st.First()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin datos"})
	}
	return c.JSON(item)
}

// Create POST con el cuerpo JSON tal cual.
func (h *ResourceHandler[T]) Create(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	ctrl := h.controller(c)
	if err := ctrl.Create(c.UserContext(), body); err != nil {
		return respondError(c, err, false)
	}
	return h.mutated(c, ctrl, fiber.StatusCreated)
}

// Update PUT /:id
func (h *ResourceHandler[T]) Update(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	ctrl := h.controller(c)
	if err := ctrl.Update(c.UserContext(), c.Params("id"), body); err != nil {
		return respondError(c, err, false)
	}
	return h.mutated(c, ctrl, fiber.StatusOK)
}

// Remove DELETE /:id?confirm=true. Sin confirm no llega a la API.
func (h *ResourceHandler[T]) Remove(c *fiber.Ctx) error {
	var conf resource.Confirmation
	if c.QueryBool("confirm") {
		conf = resource.Confirm(c.Params("id"))
	}
	ctrl := h.controller(c)
	if err := ctrl.Remove(c.UserContext(), conf); err != nil {
		return respondError(c, err, false)
	}
	return h.mutated(c, ctrl, fiber.StatusOK)
}

// Toggle PATCH /:id {field, value}
func (h *ResourceHandler[T]) Toggle(c *fiber.Ctx) error {
	var in dto.ToggleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.Field == "" {
		in.Field = "isActive"
	}
	ctrl := h.controller(c)
	if err := ctrl.ToggleField(c.UserContext(), c.Params("id"), in.Field, in.Value); err != nil {
		return respondError(c, err, false)
	}
	return h.mutated(c, ctrl, fiber.StatusOK)
}

// mutated responde con la vista ya reconciliada por el re-fetch.
func (h *ResourceHandler[T]) mutated(c *fiber.Ctx, ctrl *resource.Controller[T], status int) error {
	view, _ := h.view(ctrl, ctrl.Snapshot(), "")
	return c.Status(status).JSON(dto.MutationResponse[T]{Success: true, View: view})
}

// view arma la vista desde st. Un estado Failed se devuelve como error.
func (h *ResourceHandler[T]) view(ctrl *resource.Controller[T], st resource.State[T], query string) (dto.ResourceView[T], error) {
	view := dto.ResourceView[T]{Status: st.Status.String(), Items: []T{}}
	items, err := st.Result()
	if err != nil {
		return view, err
	}
	if h.countBy != nil {
		view.Counts = viewmodel.CountBy(items, h.countBy)
	}
	if query != "" && len(h.search) > 0 {
		items = viewmodel.FilterBySearch(items, query, h.search...)
	}
	view.Items = items
	view.Pagination = dto.PageFrom(st.Pagination)
	for _, it := range items {
		if id, ok := any(it).(entity.Identifiable); ok {
			if _, busy := ctrl.InFlight(id.GetID()); busy {
				view.InFlight = append(view.InFlight, id.GetID())
			}
		}
	}
	return view, nil
}
