package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/application/viewmodel"
	"github.com/jhoicas/loyalty-console/internal/infrastructure/apiclient"
	infrapdf "github.com/jhoicas/loyalty-console/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/loyalty-console/internal/interfaces/http"
	"github.com/jhoicas/loyalty-console/pkg/config"
	pkgjwt "github.com/jhoicas/loyalty-console/pkg/jwt"
	"github.com/jhoicas/loyalty-console/pkg/logger"
	"github.com/jhoicas/loyalty-console/pkg/metrics"
)

// sweepInterval cada cuánto se cierran las sesiones con token vencido.
const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("api", cfg.API.Endpoint()).
		Msg("iniciando consola")

	collector := metrics.New()

	// Un solo transporte HTTP; cada sesión lo liga a su credencial
	baseClient := apiclient.New(apiclient.Options{
		BaseURL: cfg.API.Endpoint(),
		Timeout: cfg.API.Timeout,
		Logger:  log.Named("apiclient"),
		Metrics: collector,
	})
	sessions := console.NewRegistry(
		pkgjwt.NewParser(cfg.JWT.Secret),
		func(src ports.CredentialSource) ports.APIClient { return baseClient.WithCredentials(src) },
		console.RegistryOptions{Logger: log, Metrics: collector},
	)

	// PDF: estado de cuenta del comercio
	statementGenerator := infrapdf.NewMarotoStatementGenerator()
	money := viewmodel.NewMoney(cfg.Display.Currency, cfg.Display.Locale)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 << 20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sessions": sessions.Len()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sessions:   sessions,
		Statements: statementGenerator,
		Money:      money,
		Logger:     log,
		Metrics:    collector,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Sweep()
			}
		}
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("consola detenida")
}
