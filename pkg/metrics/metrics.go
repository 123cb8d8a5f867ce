// Package metrics expone los contadores Prometheus de la consola con un registro propio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector agrupa los vectores de métricas. Un Collector nil es válido y no registra nada,
// así los componentes no necesitan comprobarlo en cada llamada.
type Collector struct {
	registry *prometheus.Registry

	UpstreamRequests        *prometheus.CounterVec
	UpstreamDuration        *prometheus.HistogramVec
	HTTPRequests            *prometheus.CounterVec
	HTTPDuration            *prometheus.HistogramVec
	ActiveSessions          prometheus.Gauge
	CredentialInvalidations *prometheus.CounterVec
	MutationFailures        *prometheus.CounterVec
}

// New crea el collector con namespace "console".
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "upstream_requests_total",
			Help:      "Peticiones enviadas a la API de lealtad",
		}, []string{"method", "status"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duración de las peticiones a la API de lealtad",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "http_requests_total",
			Help:      "Peticiones atendidas por la consola",
		}, []string{"method", "route", "status_code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones atendidas por la consola",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "console",
			Name:      "active_sessions",
			Help:      "Sesiones con credencial vigente",
		}),
		CredentialInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "credential_invalidations_total",
			Help:      "Credenciales descartadas por motivo",
		}, []string{"reason"}),
		MutationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "mutation_failures_total",
			Help:      "Mutaciones rechazadas por tipo de error",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		c.UpstreamRequests, c.UpstreamDuration,
		c.HTTPRequests, c.HTTPDuration,
		c.ActiveSessions, c.CredentialInvalidations, c.MutationFailures,
	)
	return c
}

// ObserveUpstream registra una petición a la API. status 0 = sin respuesta.
func (c *Collector) ObserveUpstream(method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.UpstreamRequests.WithLabelValues(method, label).Inc()
	c.UpstreamDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveHTTP registra una petición atendida por la consola.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SessionOpened / SessionClosed ajustan el gauge de sesiones.
func (c *Collector) SessionOpened() {
	if c != nil {
		c.ActiveSessions.Inc()
	}
}

func (c *Collector) SessionClosed() {
	if c != nil {
		c.ActiveSessions.Dec()
	}
}

// CredentialInvalidated cuenta una invalidación.
func (c *Collector) CredentialInvalidated(reason string) {
	if c != nil {
		c.CredentialInvalidations.WithLabelValues(reason).Inc()
	}
}

// MutationFailed cuenta una mutación fallida por tipo de error.
func (c *Collector) MutationFailed(kind string) {
	if c != nil {
		c.MutationFailures.WithLabelValues(kind).Inc()
	}
}

// Handler expone el registro en formato Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry devuelve el registro interno (tests).
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
