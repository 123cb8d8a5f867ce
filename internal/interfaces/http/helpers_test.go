package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/viewmodel"
	"github.com/jhoicas/loyalty-console/internal/infrastructure/apiclient"
	apphttp "github.com/jhoicas/loyalty-console/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/loyalty-console/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret  = "test-secret-key-for-unit-tests"
	testUserID     = "00000000-0000-0000-0000-000000000001"
	testMerchantID = "m-1"
	testExpMin     = 60
)

// upstream API remota falsa: responde según "METHOD /ruta" (sin /api/v1) y registra las peticiones.
type upstream struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]func(*http.Request) (int, any)
	seen   []seenRequest
}

type seenRequest struct {
	Method string
	Path   string
	Query  string
	Form   map[string]string
	Files  []string
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{routes: map[string]func(*http.Request) (int, any){}}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) on(method, path string, status int, body any) {
	u.mu.Lock()
	u.routes[method+" "+path] = func(*http.Request) (int, any) { return status, body }
	u.mu.Unlock()
}

// handle registra una respuesta que depende de la petición (query, bloqueos).
func (u *upstream) handle(method, path string, fn func(*http.Request) (int, any)) {
	u.mu.Lock()
	u.routes[method+" "+path] = fn
	u.mu.Unlock()
}

func (u *upstream) ok(method, path string, data any) {
	u.on(method, path, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (u *upstream) serve(w http.ResponseWriter, r *http.Request) {
	rec := seenRequest{Method: r.Method, Path: strings.TrimPrefix(r.URL.Path, "/api/v1"), Query: r.URL.RawQuery}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			rec.Form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				rec.Form[k] = v[0]
			}
			for k := range r.MultipartForm.File {
				rec.Files = append(rec.Files, k)
			}
		}
	}
	u.mu.Lock()
	u.seen = append(u.seen, rec)
	h, ok := u.routes[r.Method+" "+rec.Path]
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Route not found"}`))
		return
	}
	status, body := h(r)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (u *upstream) count(method, path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, r := range u.seen {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (u *upstream) last(method, path string) (seenRequest, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := len(u.seen) - 1; i >= 0; i-- {
		if u.seen[i].Method == method && u.seen[i].Path == path {
			return u.seen[i], true
		}
	}
	return seenRequest{}, false
}

type fakeRenderer struct{}

func (fakeRenderer) RenderStatement(context.Context, ports.StatementData) ([]byte, error) {
	return []byte("%PDF-fake"), nil
}

// buildConsole arma la consola completa contra la API falsa.
func buildConsole(t *testing.T, u *upstream) *fiber.App {
	t.Helper()
	base := apiclient.New(apiclient.Options{BaseURL: u.URL + "/api/v1"})
	reg := console.NewRegistry(pkgjwt.NewParser(testJWTSecret),
		func(src ports.CredentialSource) ports.APIClient { return base.WithCredentials(src) },
		console.RegistryOptions{})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Sessions:   reg,
		Statements: fakeRenderer{},
		Money:      viewmodel.NewMoney("IDR", "id-ID"),
	})
	return app
}

// bearer genera un token con el rol indicado.
func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testMerchantID, role, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// do lanza una petición JSON contra la consola.
func do(t *testing.T, app *fiber.App, method, target, auth string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// upload envía un archivo como campo "file" multipart.
func upload(t *testing.T, app *fiber.App, target, auth, filename string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
