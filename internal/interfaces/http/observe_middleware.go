package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/pkg/logger"
	"github.com/jhoicas/loyalty-console/pkg/metrics"
)

// ObserveMiddleware registra cada petición en el log y en las métricas HTTP.
// La etiqueta de ruta es el patrón (/console/admin/banners/:id), no la URL concreta.
func ObserveMiddleware(log *logger.Logger, m *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		elapsed := time.Since(start)
		m.ObserveHTTP(c.Method(), c.Route().Path, status, elapsed)

		ev := log.Debug()
		if status >= fiber.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", elapsed).
			Str("role", GetRole(c)).
			Msg("console")
		return err
	}
}
