// Package resource implementa el controlador genérico de estado de un recurso remoto:
// Idle → Loading → Ready | Failed, mutaciones con reconciliación por re-fetch completo
// y seguimiento de operaciones en curso por registro.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain"
	"github.com/jhoicas/loyalty-console/pkg/logger"
	"github.com/jhoicas/loyalty-console/pkg/metrics"
)

var (
	// ErrClosed el controlador ya fue desmontado; no aplica ni inicia nada más.
	ErrClosed = errors.New("resource: controlador cerrado")
	// ErrSuperseded el estado lo decide un fetch más reciente que aún no terminó.
	ErrSuperseded = errors.New("resource: consulta reemplazada por otra más reciente")
)

// Operation tipo de mutación en curso.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpToggle Operation = "toggle"
	OpAction Operation = "action"
)

// collectionTarget clave de las operaciones sin id (alta, acciones sobre el listado).
const collectionTarget = ""

// Confirmation prueba de que la UI obtuvo la confirmación del usuario para borrar.
// El valor cero no está confirmado; solo Confirm la produce.
type Confirmation struct {
	targetID  string
	confirmed bool
}

// Confirm emite la confirmación de borrado para id.
func Confirm(id string) Confirmation {
	return Confirmation{targetID: id, confirmed: id != ""}
}

// TargetID id confirmado.
func (c Confirmation) TargetID() string { return c.targetID }

// Option ajusta el controlador.
type Option func(*options)

type options struct {
	log     *logger.Logger
	metrics *metrics.Collector
}

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option { return func(o *options) { o.log = l } }

// WithMetrics inyecta el collector de métricas.
func WithMetrics(m *metrics.Collector) Option { return func(o *options) { o.metrics = m } }

// Controller mantiene el estado de un recurso para una página.
// Es el único escritor de su State; las peticiones se hacen fuera del lock y solo
// la respuesta del fetch más reciente (número de secuencia) se aplica.
type Controller[T any] struct {
	api     ports.APIClient
	cfg     Config
	log     *logger.Logger
	metrics *metrics.Collector

	mu       sync.Mutex
	state    State[T]
	seq      uint64
	params   Params
	inflight map[string]Operation
	closed   bool
	subs     map[int]func(State[T])
	nextSub  int
}

// New construye el controlador en Idle.
func New[T any](api ports.APIClient, cfg Config, opts ...Option) *Controller[T] {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	cfg = cfg.withDefaults()
	return &Controller[T]{
		api:      api,
		cfg:      cfg,
		log:      o.log.Named("resource." + cfg.Name),
		metrics:  o.metrics,
		state:    idle[T](),
		inflight: make(map[string]Operation),
		subs:     make(map[int]func(State[T])),
	}
}

// Config devuelve la configuración efectiva del recurso.
func (c *Controller[T]) Config() Config { return c.cfg }

// Snapshot devuelve una copia del estado actual.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Params últimos parámetros de listado usados.
func (c *Controller[T]) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Subscribe registra fn para cada transición; devuelve la función para darse de baja.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Close desmonta el controlador: ningún resultado que llegue después se aplica.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.subs = make(map[int]func(State[T]))
	c.mu.Unlock()
}

// Closed indica si el controlador fue desmontado.
func (c *Controller[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ── Fetch ─────────────────────────────────────────────────────────────────────

// fetchOutcome qué pasó con el resultado de un fetch.
type fetchOutcome int

const (
	fetchApplied    fetchOutcome = iota
	fetchSuperseded              // otro Fetch posterior decide el estado
	fetchUnmounted               // llegó tras Close
	fetchRejected                // el controlador ya estaba cerrado al empezar
)

// Fetch pasa a Loading, pide el listado y aplica Ready o Failed.
// Si mientras tanto se emitió otro Fetch, este resultado se descarta (last-call-wins)
// y Fetch devuelve nil: el estado lo decide la petición más reciente. Tras Close el
// resultado tampoco se aplica, aunque un fallo se sigue devolviendo.
// Devuelve el *domain.Error aplicado cuando el resultado vigente es un fallo.
func (c *Controller[T]) Fetch(ctx context.Context, params Params) error {
	st, out := c.fetch(ctx, params)
	switch out {
	case fetchRejected:
		return ErrClosed
	case fetchSuperseded:
		return nil
	}
	if st.Status == Failed {
		return st.Err
	}
	return nil
}

// Load es Fetch para quien necesita la respuesta de su propia consulta: devuelve
// el estado que produjo esta llamada, o ErrSuperseded si otra más reciente la
// reemplazó. Nunca devuelve el estado de una consulta ajena.
func (c *Controller[T]) Load(ctx context.Context, params Params) (State[T], error) {
	st, out := c.fetch(ctx, params)
	switch out {
	case fetchRejected:
		return State[T]{}, ErrClosed
	case fetchSuperseded:
		return State[T]{}, ErrSuperseded
	case fetchUnmounted:
		if st.Status == Failed {
			return State[T]{}, st.Err
		}
		return State[T]{}, ErrClosed
	}
	if st.Status == Failed {
		return st, st.Err
	}
	return st, nil
}

func (c *Controller[T]) fetch(ctx context.Context, params Params) (State[T], fetchOutcome) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State[T]{}, fetchRejected
	}
	c.seq++
	seq := c.seq
	c.params = params
	c.state = loading[T]()
	notify := c.snapshotForSubsLocked()
	c.mu.Unlock()
	notify()

	path := c.cfg.ListPath
	if q := params.encode(c.cfg.DefaultLimit); q != "" {
		path += "?" + q
	}
	env, err := c.api.Request(ctx, http.MethodGet, path, nil)
	next := c.resolve(env, err)

	c.mu.Lock()
	if c.closed || seq != c.seq {
		out := fetchSuperseded
		if c.closed {
			out = fetchUnmounted
		}
		c.mu.Unlock()
		c.log.Debug().Uint64("seq", seq).Msg("resultado descartado: fetch reemplazado o página desmontada")
		return next, out
	}
	c.state = next
	notify = c.snapshotForSubsLocked()
	c.mu.Unlock()
	notify()
	return next.clone(), fetchApplied
}

// Refresh repite el último Fetch.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.Fetch(ctx, c.Params())
}

// Pages devuelve página actual y total según la última paginación recibida.
// Sin paginación (o fuera de Ready) reporta 1 de 1.
func (c *Controller[T]) Pages() (current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, total = 1, 1
	if p := c.state.Pagination; c.state.Status == Ready && p != nil {
		if p.Page > 0 {
			current = p.Page
		}
		if p.Pages > 0 {
			total = p.Pages
		}
	}
	return current, total
}

// Goto cambia de página conservando filtros y tamaño.
func (c *Controller[T]) Goto(ctx context.Context, page int) error {
	return c.Fetch(ctx, c.Params().WithPage(page))
}

func (c *Controller[T]) resolve(env *ports.Envelope, err error) State[T] {
	if err != nil {
		return failed[T](domain.AsError(err))
	}
	if !env.Success {
		return failed[T](domain.NewError(domain.KindDomain, env.Message, env.Status, nil))
	}
	items, pagination, derr := c.decode(env.Data)
	if derr != nil {
		return failed[T](domain.NewError(domain.KindMalformed, "", env.Status, derr))
	}
	if env.Pagination != nil {
		pagination = env.Pagination
	}
	return ready(items, pagination)
}

// decode extrae la lista de data. Acepta data como arreglo, como objeto con
// ItemsKey, o como objeto con un único campo arreglo (ej. {"banners":[...]}).
func (c *Controller[T]) decode(data json.RawMessage) ([]T, *ports.Pagination, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []T{}, nil, nil
	}
	if c.cfg.Single {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		return []T{v}, nil, nil
	}
	if data[0] == '[' {
		var items []T
		err := json.Unmarshal(data, &items)
		return items, nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, nil, err
	}
	var pagination *ports.Pagination
	if raw, ok := obj["pagination"]; ok {
		var p ports.Pagination
		if json.Unmarshal(raw, &p) == nil {
			pagination = &p
		}
	}

	raw, ok := obj[c.cfg.ItemsKey]
	if c.cfg.ItemsKey == "" || !ok {
		raw, ok = soleArray(obj)
	}
	if !ok {
		return []T{}, pagination, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, err
	}
	return items, pagination, nil
}

func soleArray(obj map[string]json.RawMessage) (json.RawMessage, bool) {
	var found json.RawMessage
	n := 0
	for _, v := range obj {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '[' {
			found = v
			n++
		}
	}
	return found, n == 1
}

// ── Mutaciones ────────────────────────────────────────────────────────────────

// Create POST del payload; al éxito re-fetch completo.
func (c *Controller[T]) Create(ctx context.Context, payload any) error {
	_, err := c.mutate(ctx, OpCreate, collectionTarget, http.MethodPost, c.cfg.CreatePath, payload)
	return err
}

// Update PUT/PATCH de id; al éxito re-fetch completo.
func (c *Controller[T]) Update(ctx context.Context, id string, payload any) error {
	if id == "" {
		return domain.NewError(domain.KindValidation, "id requerido", 0, nil)
	}
	_, err := c.mutate(ctx, OpUpdate, id, c.cfg.UpdateMethod, c.cfg.itemPath(id), payload)
	return err
}

// Remove DELETE del id confirmado. Sin confirmación no toca la red.
func (c *Controller[T]) Remove(ctx context.Context, confirm Confirmation) error {
	if !confirm.confirmed {
		return domain.NewError(domain.KindValidation, domain.ErrNotConfirmed.Error(), 0, domain.ErrNotConfirmed)
	}
	_, err := c.mutate(ctx, OpDelete, confirm.targetID, http.MethodDelete, c.cfg.itemPath(confirm.targetID), nil)
	return err
}

// ToggleField cambia un solo campo (típicamente isActive) de id.
func (c *Controller[T]) ToggleField(ctx context.Context, id, field string, value any) error {
	if id == "" || field == "" {
		return domain.NewError(domain.KindValidation, "id y campo requeridos", 0, nil)
	}
	_, err := c.mutate(ctx, OpToggle, id, c.cfg.ToggleMethod, c.cfg.itemPath(id), map[string]any{field: value})
	return err
}

// Action mutación fuera del CRUD (aprobar, rechazar, recargar saldo, subir logo...).
// Ruta: /<item>/:id/<suffix>, o /<list>/<suffix> con id vacío. Devuelve data del sobre.
func (c *Controller[T]) Action(ctx context.Context, id, method, suffix string, payload any) (json.RawMessage, error) {
	target := id
	if id == "" {
		target = collectionTarget
	}
	return c.mutate(ctx, OpAction, target, method, c.cfg.actionPath(id, suffix), payload)
}

// InFlight indica si id tiene una mutación en curso (para deshabilitar solo esa fila).
func (c *Controller[T]) InFlight(id string) (Operation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op, ok := c.inflight[id]
	return op, ok
}

func (c *Controller[T]) mutate(ctx context.Context, op Operation, target, method, path string, body any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if _, busy := c.inflight[target]; busy {
		c.mu.Unlock()
		c.metrics.MutationFailed(string(domain.KindAlreadyInProgress))
		return nil, domain.NewError(domain.KindAlreadyInProgress, "", 0, nil)
	}
	c.inflight[target] = op
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, target)
		c.mu.Unlock()
	}()

	env, err := c.api.Request(ctx, method, path, body)
	if err != nil {
		return nil, c.fail(op, target, domain.AsError(err))
	}
	if !env.Success {
		return nil, c.fail(op, target, domain.NewError(domain.KindDomain, env.Message, env.Status, nil))
	}

	// Reconciliación: siempre re-fetch, nunca parche local. Un fallo del re-fetch
	// queda reflejado en el estado; la mutación en sí ya fue aceptada.
	if !c.Closed() {
		_ = c.Refresh(ctx)
	}
	return env.Data, nil
}

func (c *Controller[T]) fail(op Operation, target string, err *domain.Error) *domain.Error {
	c.metrics.MutationFailed(string(err.Kind))
	c.log.Warn().
		Str("op", string(op)).
		Str("target", target).
		Str("kind", string(err.Kind)).
		Msg(err.Text())
	return err
}

// snapshotForSubsLocked prepara la notificación; se invoca con el lock tomado
// y la función devuelta se ejecuta ya sin lock.
func (c *Controller[T]) snapshotForSubsLocked() func() {
	if len(c.subs) == 0 {
		return func() {}
	}
	st := c.state.clone()
	subs := make([]func(State[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return func() {
		for _, fn := range subs {
			fn(st)
		}
	}
}
