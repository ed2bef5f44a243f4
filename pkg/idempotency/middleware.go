package idempotency

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Cabeceras del protocolo.
const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"
)

// Middleware reproduce la respuesta guardada cuando una petición mutante repite su Idempotency-Key.
// Respuestas < 500 se guardan; con 5xx la clave se libera para permitir el reintento.
// Si el almacén falla la petición se procesa sin cache.
func Middleware(store Store, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isMutating(c.Method()) {
			return c.Next()
		}
		header := c.Get(HeaderKey)
		if header == "" {
			return c.Next()
		}
		key := c.Method() + ":" + c.Path() + ":" + header
		ctx := c.UserContext()

		cached, err := store.Reserve(ctx, key)
		switch {
		case errors.Is(err, ErrInFlight):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"code":    "CONFLICT",
				"message": "Ya hay una petición en curso con la misma Idempotency-Key",
			})
		case err != nil:
			log.Warn().Err(err).Str("idempotency_key", header).Msg("almacén de idempotencia no disponible")
			return c.Next()
		case cached != nil:
			c.Set(HeaderReplayed, "true")
			if cached.ContentType != "" {
				c.Set(fiber.HeaderContentType, cached.ContentType)
			}
			return c.Status(cached.Status).Send(cached.Body)
		}

		if err := c.Next(); err != nil {
			if rerr := store.Release(ctx, key); rerr != nil {
				log.Warn().Err(rerr).Str("idempotency_key", header).Msg("no se pudo liberar la clave")
			}
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if rerr := store.Release(ctx, key); rerr != nil {
				log.Warn().Err(rerr).Str("idempotency_key", header).Msg("no se pudo liberar la clave")
			}
			return nil
		}
		resp := Response{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if serr := store.Save(ctx, key, resp); serr != nil {
			log.Warn().Err(serr).Str("idempotency_key", header).Msg("no se pudo guardar la respuesta")
		}
		return nil
	}
}

func isMutating(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}
