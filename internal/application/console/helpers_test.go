package console_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/infrastructure/apiclient"
	pkgjwt "github.com/jhoicas/loyalty-console/pkg/jwt"
	"github.com/jhoicas/loyalty-console/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// API falsa sobre httptest
// ──────────────────────────────────────────────────────────────────────────────

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Form   map[string]string
	Files  []string
}

// fakeServer responde según "METHOD /ruta" y registra cada petición.
type fakeServer struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]func() (int, any)
	seen   []recorded
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{routes: map[string]func() (int, any){}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) on(method, path string, status int, body any) {
	f.mu.Lock()
	f.routes[method+" "+path] = func() (int, any) { return status, body }
	f.mu.Unlock()
}

func (f *fakeServer) ok(method, path string, data any) {
	f.on(method, path, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	rec := recorded{Method: r.Method, Path: strings.TrimPrefix(r.URL.Path, "/api/v1"), Query: r.URL.RawQuery}
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
	} else if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}

	f.mu.Lock()
	f.seen = append(f.seen, rec)
	h, ok := f.routes[r.Method+" "+rec.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Route not found"}`))
		return
	}
	status, body := h()
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeServer) requests() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.seen...)
}

func (f *fakeServer) count(method, path string) int {
	n := 0
	for _, r := range f.requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesiones
// ──────────────────────────────────────────────────────────────────────────────

const testSecret = "test-secret-key-for-unit-tests"

func token(t *testing.T, role, merchantID string, expMinutes int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testSecret, "u-1", merchantID, role, expMinutes)
	require.NoError(t, err)
	return tok
}

func newRegistry(t *testing.T, f *fakeServer, m *metrics.Collector) *console.Registry {
	t.Helper()
	base := apiclient.New(apiclient.Options{BaseURL: f.URL + "/api/v1", Metrics: m})
	return console.NewRegistry(pkgjwt.NewParser(testSecret),
		func(src ports.CredentialSource) ports.APIClient { return base.WithCredentials(src) },
		console.RegistryOptions{Metrics: m})
}

func openSession(t *testing.T, f *fakeServer, role, merchantID string) *console.Session {
	t.Helper()
	s, err := newRegistry(t, f, nil).Open(token(t, role, merchantID, 60))
	require.NoError(t, err)
	return s
}

var bg = context.Background()
