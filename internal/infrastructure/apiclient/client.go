// Package apiclient implementa el cliente HTTP de la API de lealtad: adjunta el bearer,
// codifica JSON o multipart, decodifica el sobre {success,data,message} y traduce
// los fallos de red y de sesión a *domain.Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/jhoicas/loyalty-console/internal/application/credential"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain"
	"github.com/jhoicas/loyalty-console/pkg/logger"
	"github.com/jhoicas/loyalty-console/pkg/metrics"
)

// Verificar en tiempo de compilación que Client implementa APIClient.
var _ ports.APIClient = (*Client)(nil)

// maxBodyBytes límite de lectura de una respuesta.
const maxBodyBytes = 4 << 20

// Options configuración del cliente.
type Options struct {
	BaseURL    string        // origen + /api/v1
	Timeout    time.Duration // 0 = solo el deadline del context
	HTTPClient *http.Client  // opcional
	Logger     *logger.Logger
	Metrics    *metrics.Collector
}

// Client adaptador HTTP. Es inmutable: WithCredentials devuelve una copia ligada a una sesión,
// de modo que un mismo transporte sirve a todas las sesiones de la consola.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	creds      ports.CredentialSource
	log        *logger.Logger
	metrics    *metrics.Collector
}

// New construye el cliente sin credenciales.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		httpClient: hc,
		log:        log,
		metrics:    opts.Metrics,
	}
}

// WithCredentials devuelve un cliente que firma cada petición con src.
func (c *Client) WithCredentials(src ports.CredentialSource) *Client {
	cp := *c
	cp.creds = src
	return &cp
}

// Request ejecuta la petición. Contrato:
//   - sin credencial: *domain.Error auth.missing, sin tocar la red;
//   - 401: invalida la credencial y devuelve auth.expired;
//   - otro no-2xx: sobre con Success=false (decodificado o sintético "HTTP <status>"), sin error;
//   - red caída / timeout: transport.unreachable / transport.timeout.
//
// No reintenta: cada llamada es un único intento.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*ports.Envelope, error) {
	if !validMethod(method) {
		return nil, domain.NewError(domain.KindValidation, "método HTTP no soportado: "+method, 0, nil)
	}
	if c.creds == nil {
		return nil, domain.NewError(domain.KindAuthMissing, "", 0, nil)
	}
	token, ok := c.creds.Token()
	if !ok {
		return nil, domain.NewError(domain.KindAuthMissing, "", 0, nil)
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, domain.NewError(domain.KindValidation, "no se pudo codificar el cuerpo", 0, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, domain.NewError(domain.KindValidation, "petición inválida", 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(method, 0, time.Since(start))
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("API inalcanzable")
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.ObserveUpstream(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API")

	env, decodeErr := decodeEnvelope(raw, resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		// Invalidar antes de devolver: ninguna petición posterior del lote reutiliza el token.
		c.creds.Invalidate(credential.ReasonUnauthorized)
		msg := ""
		if decodeErr == nil {
			msg = env.Message
		}
		return nil, domain.NewError(domain.KindAuthExpired, msg, resp.StatusCode, nil)
	}

	if decodeErr != nil {
		if is2xx(resp.StatusCode) {
			return nil, domain.NewError(domain.KindMalformed, "", resp.StatusCode, decodeErr)
		}
		return syntheticEnvelope(resp.StatusCode), nil
	}
	return env, nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func validMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func is2xx(status int) bool { return status >= 200 && status < 300 }

// decodeEnvelope intenta leer el sobre aunque el status no sea 2xx.
func decodeEnvelope(raw []byte, status int) (*ports.Envelope, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("cuerpo vacío")
	}
	var env ports.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	env.Status = status
	if !is2xx(status) {
		// Un no-2xx nunca es éxito aunque el servidor diga lo contrario.
		env.Success = false
	}
	if !env.Success && env.Message == "" {
		env.Message = fmt.Sprintf("HTTP %d", status)
	}
	return &env, nil
}

func syntheticEnvelope(status int) *ports.Envelope {
	return &ports.Envelope{Success: false, Message: fmt.Sprintf("HTTP %d", status), Status: status}
}

func transportError(ctx context.Context, err error) *domain.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewError(domain.KindTimeout, "", 0, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewError(domain.KindTimeout, "", 0, err)
	}
	return domain.NewError(domain.KindUnreachable, "", 0, err)
}

// encodeBody elige la codificación: nada, multipart o JSON.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case ports.Multipart:
		return encodeMultipart(&b)
	case *ports.Multipart:
		if b == nil {
			return nil, "", nil
		}
		return encodeMultipart(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func encodeMultipart(m *ports.Multipart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		part, err := createFilePart(w, f)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	// El boundary lo define el writer; nadie fija el Content-Type a mano.
	return &buf, w.FormDataContentType(), nil
}

func createFilePart(w *multipart.Writer, f ports.FilePart) (io.Writer, error) {
	if f.ContentType == "" {
		return w.CreateFormFile(f.Field, f.Filename)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(f.Field), escapeQuotes(f.Filename)))
	h.Set("Content-Type", f.ContentType)
	return w.CreatePart(h)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
