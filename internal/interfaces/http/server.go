package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-faturamento/pkg/config"
)

// ServerConfig parámetros comunes de los dos servicios.
type ServerConfig struct {
	Name string
	HTTP config.HTTPConfig
	Docs config.DocsConfig
}

// NewServer crea la app fiber con recover, trazas, log de peticiones, /health y Swagger UI.
func NewServer(cfg ServerConfig, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          errorHandler(log),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(TracingMiddleware())
	app.Use(RequestLogger(log))

	// Swagger UI: http://localhost:<port>/docs (el middleware falla si el archivo no existe)
	if cfg.Docs.Enabled {
		if _, err := os.Stat(cfg.Docs.FilePath); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.Docs.FilePath,
				Path:     "docs",
				Title:    cfg.Name,
			}))
		} else {
			log.Warn().Str("file", cfg.Docs.FilePath).Msg("swagger.json no encontrado, /docs deshabilitado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	return app
}
