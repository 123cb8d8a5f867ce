package resource

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Config describe un recurso de la API: rutas y forma del sobre.
type Config struct {
	Name         string // etiqueta para logs: "banners", "merchants"...
	ListPath     string // GET del listado, ej. /banners o /cms/admin/all
	ItemPath     string // base de /:id; por defecto ListPath
	CreatePath   string // POST de alta; por defecto ListPath
	ItemsKey     string // data.<ItemsKey> contiene la lista; vacío = data es la lista
	Single       bool   // data es un único objeto (perfil, dashboard, ajustes)
	UpdateMethod string // PUT por defecto
	ToggleMethod string // PATCH por defecto
	DefaultLimit int    // tamaño de página si Params.Limit es 0; 0 = no enviar
}

func (c Config) withDefaults() Config {
	if c.ItemPath == "" {
		c.ItemPath = c.ListPath
	}
	if c.CreatePath == "" {
		c.CreatePath = c.ListPath
	}
	if c.UpdateMethod == "" {
		c.UpdateMethod = http.MethodPut
	}
	if c.ToggleMethod == "" {
		c.ToggleMethod = http.MethodPatch
	}
	if c.Name == "" {
		c.Name = strings.Trim(c.ListPath, "/")
	}
	return c
}

func (c Config) itemPath(id string) string {
	return strings.TrimRight(c.ItemPath, "/") + "/" + url.PathEscape(id)
}

// actionPath: /<item>/:id/<suffix> o /<list>/<suffix> si no hay id.
func (c Config) actionPath(id, suffix string) string {
	base := strings.TrimRight(c.ListPath, "/")
	if id != "" {
		base = c.itemPath(id)
	}
	if suffix == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(suffix, "/")
}

// Params parámetros de consulta del listado: paginación y filtros.
type Params struct {
	Page    int
	Limit   int
	Filters map[string]string
}

// WithPage devuelve una copia con otra página.
func (p Params) WithPage(page int) Params {
	out := p
	out.Page = page
	out.Filters = make(map[string]string, len(p.Filters))
	for k, v := range p.Filters {
		out.Filters[k] = v
	}
	return out
}

// encode arma el query string.
func (p Params) encode(defaultLimit int) string {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	// Encode ordena por clave
	return q.Encode()
}
