// Package draft mantiene el estado transitorio de los formularios de alta y edición,
// separado del estado traído del servidor, y lo convierte en el payload a enviar.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain"
)

// ErrUnknownDraft el handle no existe o ya fue descartado.
var ErrUnknownDraft = errors.New("draft: borrador inexistente o descartado")

// Mode indica si el borrador crea o edita.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Handle identifica un borrador abierto.
type Handle string

// File archivo adjuntado al borrador.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Draft copia de lectura de un borrador.
type Draft struct {
	Handle   Handle
	Mode     Mode
	Tag      string // recurso al que se enviará, ej. "banners"
	TargetID string
	Values   map[string]any
	Previews map[string]string // campo -> previewURL
}

type draft struct {
	mode     Mode
	tag      string
	targetID string
	values   map[string]any
	files    map[string]File
	previews map[string]string
}

// DefaultCreate valores con los que arranca un alta de banner o página CMS.
func DefaultCreate() map[string]any {
	return map[string]any{"priority": 0, "status": "active"}
}

// Manager guarda los borradores de una sesión.
type Manager struct {
	mu       sync.Mutex
	drafts   map[Handle]*draft
	previews *PreviewRegistry
	defaults map[string]any
}

// NewManager construye el gestor. defaults nil usa DefaultCreate; previews nil crea un registro propio.
func NewManager(previews *PreviewRegistry, defaults map[string]any) *Manager {
	if previews == nil {
		previews = NewPreviewRegistry()
	}
	if defaults == nil {
		defaults = DefaultCreate()
	}
	return &Manager{
		drafts:   make(map[Handle]*draft),
		previews: previews,
		defaults: copyValues(defaults),
	}
}

// Previews registro de vistas previas usado por el gestor.
func (m *Manager) Previews() *PreviewRegistry { return m.previews }

// OpenCreate abre un alta partiendo siempre de los valores por defecto; initial los sobrescribe.
func (m *Manager) OpenCreate(initial map[string]any) Handle {
	return m.OpenCreateWith(m.defaults, initial)
}

// OpenCreateWith abre un alta con los defaults propios de un recurso en lugar de
// los del gestor. defaults nil arranca vacío.
func (m *Manager) OpenCreateWith(defaults, initial map[string]any) Handle {
	values := copyValues(defaults)
	for k, v := range initial {
		values[k] = v
	}
	return m.open(&draft{mode: ModeCreate, values: values})
}

// OpenEdit abre una edición sembrada con la instantánea actual de la entidad.
// Cada llamada crea un borrador nuevo: nunca reutiliza uno anterior.
func (m *Manager) OpenEdit(id string, snapshot any) (Handle, error) {
	if id == "" {
		return "", domain.NewError(domain.KindValidation, "id requerido para editar", 0, nil)
	}
	values, err := toValues(snapshot)
	if err != nil {
		return "", domain.NewError(domain.KindValidation, "no se pudo leer la entidad a editar", 0, err)
	}
	return m.open(&draft{mode: ModeEdit, targetID: id, values: values}), nil
}

func (m *Manager) open(d *draft) Handle {
	d.files = make(map[string]File)
	d.previews = make(map[string]string)
	h := Handle(uuid.NewString())
	m.mu.Lock()
	m.drafts[h] = d
	m.mu.Unlock()
	return h
}

// Get devuelve una copia del borrador.
func (m *Manager) Get(h Handle) (Draft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[h]
	if !ok {
		return Draft{}, false
	}
	previews := make(map[string]string, len(d.previews))
	for k, v := range d.previews {
		previews[k] = v
	}
	return Draft{
		Handle:   h,
		Mode:     d.mode,
		Tag:      d.tag,
		TargetID: d.targetID,
		Values:   copyValues(d.values),
		Previews: previews,
	}, true
}

// SetTag asocia el borrador a un recurso.
func (m *Manager) SetTag(h Handle, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[h]
	if !ok {
		return ErrUnknownDraft
	}
	d.tag = tag
	return nil
}

// Update fija un campo escalar.
func (m *Manager) Update(h Handle, field string, value any) error {
	if field == "" {
		return domain.NewError(domain.KindValidation, "campo requerido", 0, nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[h]
	if !ok {
		return ErrUnknownDraft
	}
	d.values[field] = value
	return nil
}

// Attach adjunta f en field y devuelve la URL de vista previa.
// Un adjunto previo en el mismo campo se reemplaza y su vista previa se revoca.
func (m *Manager) Attach(h Handle, field string, f File) (string, error) {
	if field == "" || len(f.Content) == 0 {
		return "", domain.NewError(domain.KindValidation, "archivo vacío", 0, nil)
	}
	m.mu.Lock()
	d, ok := m.drafts[h]
	if !ok {
		m.mu.Unlock()
		return "", ErrUnknownDraft
	}
	old := d.previews[field]
	url := m.previews.Register(f)
	d.files[field] = f
	d.previews[field] = url
	m.mu.Unlock()

	if old != "" {
		m.previews.Revoke(old)
	}
	return url, nil
}

// Discard cierra el borrador y revoca sus vistas previas. Es idempotente.
func (m *Manager) Discard(h Handle) {
	m.mu.Lock()
	d, ok := m.drafts[h]
	delete(m.drafts, h)
	m.mu.Unlock()
	if !ok {
		return
	}
	for _, url := range d.previews {
		m.previews.Revoke(url)
	}
}

// DiscardAll descarta todos los borradores (cierre de sesión).
func (m *Manager) DiscardAll() {
	m.mu.Lock()
	handles := make([]Handle, 0, len(m.drafts))
	for h := range m.drafts {
		handles = append(handles, h)
	}
	m.mu.Unlock()
	for _, h := range handles {
		m.Discard(h)
	}
}

// Open cantidad de borradores abiertos.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}

// Materialize produce el payload: map JSON sin adjuntos, ports.Multipart con adjuntos.
// El borrador sigue abierto; el llamador lo descarta tras un envío exitoso.
func (m *Manager) Materialize(h Handle) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[h]
	if !ok {
		return nil, ErrUnknownDraft
	}
	if len(d.files) == 0 {
		return copyValues(d.values), nil
	}

	mp := ports.Multipart{Fields: make(map[string]string, len(d.values))}
	for k, v := range d.values {
		if _, isFile := d.files[k]; isFile || v == nil {
			continue
		}
		s, err := formValue(v)
		if err != nil {
			return nil, domain.NewError(domain.KindValidation, fmt.Sprintf("campo %s no serializable", k), 0, err)
		}
		mp.Fields[k] = s
	}
	fields := make([]string, 0, len(d.files))
	for k := range d.files {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		f := d.files[k]
		mp.Files = append(mp.Files, ports.FilePart{
			Field:       k,
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Content:     f.Content,
		})
	}
	return mp, nil
}

// formValue representa un valor escalar como campo de formulario.
func formValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case time.Time:
		return x.Format(time.RFC3339), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// toValues convierte una entidad a sus campos JSON.
func toValues(snapshot any) (map[string]any, error) {
	if snapshot == nil {
		return map[string]any{}, nil
	}
	if m, ok := snapshot.(map[string]any); ok {
		return copyValues(m), nil
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func copyValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
