package http_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func banners() map[string]any {
	return map[string]any{"banners": []map[string]any{
		{"_id": "b1", "title": "Promo Lebaran", "isActive": true},
		{"_id": "b2", "title": "Ramadhan Sale", "isActive": false},
		{"_id": "b3", "title": "Lebaran Cashback", "isActive": true},
	}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ListadoConBusquedaYConteos(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/banners", banners())
	app := buildConsole(t, u)

	resp := do(t, app, http.MethodGet, "/console/admin/banners?q=lebaran", bearer(t, "admin"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)

	assert.Equal(t, "ready", body["status"])
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "b1", items[0].(map[string]any)["_id"])
	assert.Equal(t, map[string]any{"active": float64(2), "inactive": float64(1)}, body["counts"],
		"los conteos se calculan sobre el listado completo")
}

func TestRouter_FiltrosSeReenvianALaAPI(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/transactions", map[string]any{"transactions": []any{}})
	app := buildConsole(t, u)

	resp := do(t, app, http.MethodGet, "/console/admin/transactions?page=2&type=purchase&q=x", bearer(t, "admin"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	got, ok := u.last(http.MethodGet, "/transactions")
	require.True(t, ok)
	assert.Equal(t, "limit=20&page=2&type=purchase", got.Query, "q se resuelve en la consola")
}

func TestRouter_ListadoReemplazadoNoDevuelveItemsAjenos(t *testing.T) {
	u := newUpstream(t)
	arrived := make(chan struct{})
	release := make(chan struct{})
	u.handle(http.MethodGet, "/banners", func(r *http.Request) (int, any) {
		page := r.URL.Query().Get("page")
		if page == "1" {
			close(arrived)
			<-release
		}
		return http.StatusOK, map[string]any{"success": true, "data": []map[string]any{{"_id": "p" + page}}}
	})
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	first := make(chan *http.Response, 1)
	go func() { first <- do(t, app, http.MethodGet, "/console/admin/banners?page=1", auth, nil) }()
	<-arrived

	resp := do(t, app, http.MethodGet, "/console/admin/banners?page=2", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode(t, resp)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].(map[string]any)["_id"])

	close(release)
	stale := <-first
	assert.Equal(t, http.StatusConflict, stale.StatusCode)
	body := decode(t, stale)
	assert.Equal(t, "STALE_REQUEST", body["code"])
	assert.Equal(t, "/console/admin/banners?page=1", body["retry_url"])
	assert.Nil(t, body["items"], "la consulta reemplazada no recibe los items de la otra")
}

func TestRouter_FalloDeConsultaIncluyeRetry(t *testing.T) {
	u := newUpstream(t)
	u.on(http.MethodGet, "/banners", http.StatusInternalServerError, map[string]any{"success": false, "message": "boom"})
	app := buildConsole(t, u)

	resp := do(t, app, http.MethodGet, "/console/admin/banners?page=1", bearer(t, "admin"), nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "boom", body["message"])
	assert.Equal(t, "/console/admin/banners?page=1", body["retry_url"])
}

func TestRouter_RechazoDeLaAPIConservaStatus4xx(t *testing.T) {
	u := newUpstream(t)
	u.on(http.MethodPost, "/banners", http.StatusUnprocessableEntity, map[string]any{"success": false, "message": "title requerido"})
	app := buildConsole(t, u)

	resp := do(t, app, http.MethodPost, "/console/admin/banners", bearer(t, "admin"), map[string]any{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "REJECTED", body["code"])
	assert.Equal(t, "title requerido", body["message"])
	assert.Nil(t, body["retry_url"], "las mutaciones no se reintentan desde la respuesta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión: 401 de la API, logout y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_401DeLaAPICierraLaSesion(t *testing.T) {
	u := newUpstream(t)
	u.on(http.MethodGet, "/banners", http.StatusUnauthorized, map[string]any{"success": false, "message": "jwt expired"})
	u.ok(http.MethodGet, "/auth/me", map[string]any{"_id": "u-1", "name": "Admin"})
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	resp := do(t, app, http.MethodGet, "/console/admin/banners", auth, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "SESSION_EXPIRED", body["code"])
	assert.Equal(t, "/login", body["redirect"])

	resp = do(t, app, http.MethodGet, "/console/profile", auth, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el token queda revocado")
	resp.Body.Close()
	assert.Equal(t, 0, u.count(http.MethodGet, "/auth/me"), "sin credencial no hay peticiones")
}

func TestRouter_LogoutRevocaElToken(t *testing.T) {
	u := newUpstream(t)
	app := buildConsole(t, u)
	auth := bearer(t, "merchant")

	resp := do(t, app, http.MethodGet, "/console/session", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "merchant", decode(t, resp)["role"])

	resp = do(t, app, http.MethodPost, "/console/logout", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/login", decode(t, resp)["redirect"])

	resp = do(t, app, http.MethodGet, "/console/session", auth, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_PanelesPorRol(t *testing.T) {
	u := newUpstream(t)
	app := buildConsole(t, u)

	resp := do(t, app, http.MethodGet, "/console/admin/banners", bearer(t, "merchant"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, app, http.MethodGet, "/console/merchant/qr", bearer(t, "admin"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 0, u.count(http.MethodGet, "/banners"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_EliminarRequiereConfirmacion(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/banners", banners())
	u.ok(http.MethodDelete, "/banners/b1", nil)
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	resp := do(t, app, http.MethodDelete, "/console/admin/banners/b1", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "CONFIRMATION_REQUIRED", decode(t, resp)["code"])
	assert.Equal(t, 0, u.count(http.MethodDelete, "/banners/b1"))

	resp = do(t, app, http.MethodDelete, "/console/admin/banners/b1?confirm=true", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ready", body["view"].(map[string]any)["status"], "la vista llega reconciliada")
	assert.Equal(t, 1, u.count(http.MethodDelete, "/banners/b1"))
	assert.Equal(t, 1, u.count(http.MethodGet, "/banners"), "re-fetch tras la mutación")
}

func TestRouter_ToggleEnviaSoloElCampo(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/merchants", map[string]any{"merchants": []any{}})
	u.ok(http.MethodPut, "/merchants/m-3", map[string]any{"_id": "m-3"})
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	resp := do(t, app, http.MethodPatch, "/console/admin/merchants/m-3", auth, map[string]any{"value": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 1, u.count(http.MethodPut, "/merchants/m-3"), "la API edita comercios por PUT")
	assert.Zero(t, u.count(http.MethodPatch, "/merchants/m-3"))

	resp = do(t, app, http.MethodPatch, "/console/admin/customers/c1", auth, map[string]any{"value": false})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "los clientes son de solo lectura")
	resp.Body.Close()
}

func TestRouter_ComercioAltaFichaYEdicion(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/merchants", map[string]any{"merchants": []map[string]any{{"_id": "m-5", "businessName": "Kopi"}}})
	u.ok(http.MethodPost, "/merchants", map[string]any{"_id": "m-5"})
	u.ok(http.MethodGet, "/merchants/m-5", map[string]any{"_id": "m-5", "businessName": "Kopi"})
	u.ok(http.MethodPut, "/merchants/m-5", map[string]any{"_id": "m-5"})
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	resp := do(t, app, http.MethodPost, "/console/admin/merchants", auth, map[string]any{"businessName": "Kopi"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, app, http.MethodGet, "/console/admin/merchants/m-5", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Kopi", decode(t, resp)["businessName"])

	resp = do(t, app, http.MethodPut, "/console/admin/merchants/m-5", auth, map[string]any{"businessName": "Kopi Dua"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 1, u.count(http.MethodPost, "/merchants"))
	assert.Equal(t, 1, u.count(http.MethodPut, "/merchants/m-5"))
	assert.Equal(t, 2, u.count(http.MethodGet, "/merchants"), "re-fetch del listado tras cada mutación")
}

func TestRouter_BorradorSinDefaultsAjenos(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/loyalty-levels", []any{})
	u.ok(http.MethodPost, "/loyalty-levels", map[string]any{"_id": "l1"})
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	resp := do(t, app, http.MethodPost, "/console/admin/drafts", auth, map[string]any{
		"resource": "loyalty-levels", "initial": map[string]any{"name": "Gold"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	d := decode(t, resp)
	assert.Equal(t, map[string]any{"name": "Gold"}, d["values"], "sin priority ni status")

	resp = do(t, app, http.MethodPost, "/console/admin/drafts/"+d["handle"].(string)+"/submit", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 1, u.count(http.MethodPost, "/loyalty-levels"))
}

func TestRouter_BorradorDePerfilSiempreDelPropioComercio(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodPut, "/merchants/"+testMerchantID, map[string]any{"_id": testMerchantID})
	u.ok(http.MethodGet, "/merchants/"+testMerchantID, map[string]any{"_id": testMerchantID})
	app := buildConsole(t, u)
	auth := bearer(t, "merchant")

	resp := do(t, app, http.MethodPost, "/console/merchant/drafts", auth, map[string]any{
		"resource": "profile", "id": "m-otro", "initial": map[string]any{"businessName": "Ajeno"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	d := decode(t, resp)
	assert.Equal(t, testMerchantID, d["targetId"], "el id de la petición se ignora")

	resp = do(t, app, http.MethodPost, "/console/merchant/drafts/"+d["handle"].(string)+"/submit", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 1, u.count(http.MethodPut, "/merchants/"+testMerchantID))
	assert.Zero(t, u.count(http.MethodPut, "/merchants/m-otro"))
}

func TestRouter_AprobarYRechazarComercio(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/merchants/pending", []any{})
	u.ok(http.MethodPost, "/merchants/m-9/approve", nil)
	u.ok(http.MethodPost, "/merchants/m-8/reject", nil)
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	resp := do(t, app, http.MethodPost, "/console/admin/merchants/pending/m-9/approve", auth, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = do(t, app, http.MethodPost, "/console/admin/merchants/pending/m-8/reject", auth, map[string]any{"reason": "docs"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 1, u.count(http.MethodPost, "/merchants/m-9/approve"))
	assert.Equal(t, 1, u.count(http.MethodPost, "/merchants/m-8/reject"))
}

func TestRouter_ValidacionLocalNoLlamaALaAPI(t *testing.T) {
	u := newUpstream(t)
	app := buildConsole(t, u)

	resp := do(t, app, http.MethodPut, "/console/merchant/rewards", bearer(t, "merchant"), map[string]any{"percentage": 150})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, resp)["code"])
	assert.Equal(t, 0, u.count(http.MethodPut, "/merchants/m-1/rewards/percentage"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Borradores con adjuntos
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_BorradorConImagen(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/banners", banners())
	u.ok(http.MethodPost, "/banners", map[string]any{"_id": "b9"})
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	resp := do(t, app, http.MethodPost, "/console/admin/drafts", auth, map[string]any{"resource": "banners"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	d := decode(t, resp)
	handle := d["handle"].(string)
	assert.Equal(t, "create", d["mode"])
	assert.Equal(t, "active", d["values"].(map[string]any)["status"], "un alta arranca con los valores por defecto")

	resp = do(t, app, http.MethodPatch, "/console/admin/drafts/"+handle, auth, map[string]any{"field": "title", "value": "Nuevo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = upload(t, app, "/console/admin/drafts/"+handle+"/files/image", auth, "banner.png", []byte("png-bytes"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	preview := decode(t, resp)["previewUrl"].(string)
	require.True(t, strings.HasPrefix(preview, "preview:"))
	previewPath := "/console/previews/" + strings.TrimPrefix(preview, "preview:")

	resp = do(t, app, http.MethodGet, previewPath, auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "png-bytes", string(raw))

	resp = do(t, app, http.MethodPost, "/console/admin/drafts/"+handle+"/submit", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	sent, ok := u.last(http.MethodPost, "/banners")
	require.True(t, ok)
	assert.Equal(t, "Nuevo", sent.Form["title"])
	assert.Equal(t, []string{"image"}, sent.Files)

	resp = do(t, app, http.MethodGet, previewPath, auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "la vista previa se revoca tras enviar")
	resp.Body.Close()
	resp = do(t, app, http.MethodGet, "/console/admin/drafts/"+handle, auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_BorradorEdicionDesdeListado(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/banners", banners())
	app := buildConsole(t, u)
	auth := bearer(t, "admin")

	resp := do(t, app, http.MethodPost, "/console/admin/drafts", auth, map[string]any{"resource": "banners", "id": "b2"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sin listado cargado no hay instantánea")
	resp.Body.Close()

	resp = do(t, app, http.MethodGet, "/console/admin/banners", auth, nil)
	resp.Body.Close()

	resp = do(t, app, http.MethodPost, "/console/admin/drafts", auth, map[string]any{"resource": "banners", "id": "b2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	d := decode(t, resp)
	assert.Equal(t, "edit", d["mode"])
	assert.Equal(t, "Ramadhan Sale", d["values"].(map[string]any)["title"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Panel del comercio
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_EstadoDeCuentaPDF(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodGet, "/merchants/m-1", map[string]any{"_id": "m-1", "businessName": "Kopi"})
	u.ok(http.MethodGet, "/transactions/merchant/m-1", map[string]any{"transactions": []any{}})
	app := buildConsole(t, u)

	resp := do(t, app, http.MethodGet, "/console/merchant/transactions/statement.pdf", bearer(t, "merchant"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "m-1")
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-fake", string(raw))
}

func TestRouter_CobroQR(t *testing.T) {
	u := newUpstream(t)
	u.ok(http.MethodPost, "/qr-payments/scan", map[string]any{"code": "QR1", "customerId": "c-7", "customerName": "Budi"})
	u.ok(http.MethodPost, "/qr-payments/process", map[string]any{"transactionId": "t-1", "amount": 5000})
	app := buildConsole(t, u)
	auth := bearer(t, "merchant")

	resp := do(t, app, http.MethodPost, "/console/merchant/qr/charge", auth, map[string]any{"amount": 5000})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no se cobra sin escanear")
	resp.Body.Close()

	resp = do(t, app, http.MethodPost, "/console/merchant/qr/scan", auth, map[string]any{"code": "QR1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "charge", decode(t, resp)["step"])

	resp = do(t, app, http.MethodPost, "/console/merchant/qr/charge", auth, map[string]any{"amount": 5000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "done", decode(t, resp)["step"])

	resp = do(t, app, http.MethodDelete, "/console/merchant/qr", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "scan", decode(t, resp)["step"])
}
