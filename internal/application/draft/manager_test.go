package draft_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/loyalty-console/internal/application/draft"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

var png = draft.File{Filename: "promo.png", ContentType: "image/png", Content: []byte{0x89, 'P', 'N', 'G'}}

// ──────────────────────────────────────────────────────────────────────────────
// Apertura
// ──────────────────────────────────────────────────────────────────────────────

func TestOpenCreate_ArrancaDeLosDefaults(t *testing.T) {
	m := draft.NewManager(nil, nil)

	h := m.OpenCreate(nil)
	d, ok := m.Get(h)
	require.True(t, ok)
	assert.Equal(t, draft.ModeCreate, d.Mode)
	assert.Equal(t, map[string]any{"priority": 0, "status": "active"}, d.Values)

	// Editar un alta no contamina la siguiente.
	require.NoError(t, m.Update(h, "status", "inactive"))
	h2 := m.OpenCreate(map[string]any{"title": "Hola"})
	d2, _ := m.Get(h2)
	assert.Equal(t, "active", d2.Values["status"])
	assert.Equal(t, "Hola", d2.Values["title"])
	assert.NotEqual(t, h, h2)
}

func TestOpenCreateWith_DefaultsPorRecurso(t *testing.T) {
	m := draft.NewManager(nil, nil)

	h := m.OpenCreateWith(nil, map[string]any{"name": "Gold", "minPoints": 1000})
	d, ok := m.Get(h)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Gold", "minPoints": 1000}, d.Values)

	h2 := m.OpenCreateWith(map[string]any{"isActive": true}, nil)
	d2, _ := m.Get(h2)
	assert.Equal(t, map[string]any{"isActive": true}, d2.Values)
}

func TestOpenEdit_SembradoDesdeLaInstantanea(t *testing.T) {
	m := draft.NewManager(nil, nil)
	page := entity.CMSPage{ID: "c1", Title: "FAQ", Slug: "faq", Priority: 3, Status: "active"}

	h, err := m.OpenEdit(page.ID, page)
	require.NoError(t, err)
	require.NoError(t, m.Update(h, "title", "FAQ v2"))
	m.Discard(h)

	// Reabrir siempre parte de la entidad, no del borrador anterior.
	h2, err := m.OpenEdit(page.ID, page)
	require.NoError(t, err)
	d, _ := m.Get(h2)
	assert.Equal(t, draft.ModeEdit, d.Mode)
	assert.Equal(t, "c1", d.TargetID)
	assert.Equal(t, "FAQ", d.Values["title"])
	assert.Equal(t, float64(3), d.Values["priority"])
	assert.Equal(t, "active", d.Values["status"])
}

func TestOpenEdit_SinID(t *testing.T) {
	_, err := draft.NewManager(nil, nil).OpenEdit("", entity.Banner{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjuntos y vistas previas
// ──────────────────────────────────────────────────────────────────────────────

func TestAttach_DiscardRevocaLasVistasPrevias(t *testing.T) {
	reg := draft.NewPreviewRegistry()
	m := draft.NewManager(reg, nil)
	h := m.OpenCreate(nil)

	url, err := m.Attach(h, "image", png)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, draft.PreviewPrefix))
	f, ok := reg.Lookup(url)
	require.True(t, ok)
	assert.Equal(t, "promo.png", f.Filename)

	m.Discard(h)
	assert.Equal(t, 0, reg.Len())
	_, ok = reg.Lookup(url)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Open())

	m.Discard(h) // idempotente
	_, err = m.Attach(h, "image", png)
	assert.ErrorIs(t, err, draft.ErrUnknownDraft)
}

func TestAttach_ReemplazoRevocaLaAnterior(t *testing.T) {
	reg := draft.NewPreviewRegistry()
	m := draft.NewManager(reg, nil)
	h := m.OpenCreate(nil)

	first, err := m.Attach(h, "logo", png)
	require.NoError(t, err)
	second, err := m.Attach(h, "logo", draft.File{Filename: "b.png", Content: []byte("b")})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Lookup(first)
	assert.False(t, ok)
}

func TestAttach_ArchivoVacio(t *testing.T) {
	m := draft.NewManager(nil, nil)
	_, err := m.Attach(m.OpenCreate(nil), "image", draft.File{Filename: "x.png"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Materialize
// ──────────────────────────────────────────────────────────────────────────────

func TestMaterialize_SinArchivosEsJSON(t *testing.T) {
	m := draft.NewManager(nil, nil)
	h := m.OpenCreate(map[string]any{"title": "Promo", "displayOrder": 5})

	payload, err := m.Materialize(h)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Promo", "displayOrder": 5, "priority": 0, "status": "active"}, payload)
}

func TestMaterialize_ConArchivoEsMultipart(t *testing.T) {
	m := draft.NewManager(nil, map[string]any{})
	h := m.OpenCreate(map[string]any{"title": "Promo", "discount": decimal.RequireFromString("12.5")})
	_, err := m.Attach(h, "image", png)
	require.NoError(t, err)

	payload, err := m.Materialize(h)
	require.NoError(t, err)
	mp, ok := payload.(ports.Multipart)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"title": "Promo", "discount": "12.5"}, mp.Fields)
	require.Len(t, mp.Files, 1)
	assert.Equal(t, "image", mp.Files[0].Field)
	assert.Equal(t, png.Content, mp.Files[0].Content)
}

func TestMaterialize_BorradorInexistente(t *testing.T) {
	_, err := draft.NewManager(nil, nil).Materialize("nope")
	assert.ErrorIs(t, err, draft.ErrUnknownDraft)
}
