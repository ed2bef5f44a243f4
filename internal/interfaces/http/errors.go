package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
)

// writeError traduce errores de dominio al cuerpo dto.ErrorResponse con su status.
// productNotFound es 404 en el ledger y 400 en facturación, donde el producto es un dato de la factura.
// Errores no clasificados se registran y se devuelven como 500 con mensaje genérico.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error, productNotFound int) error {
	var (
		insufficient *domain.InsufficientStockError
		missing      *domain.ProductNotFoundError
		transition   *domain.InvalidTransitionError
		pending      *domain.PendingOperationError
		unavailable  *domain.StockUnavailableError
	)
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusBadRequest).JSON(dto.InsufficientStockResponse{
			ErrorResponse: dto.ErrorResponse{Code: dto.CodeInsufficientStock, Message: insufficient.Error()},
			ProductID:     insufficient.ProductID,
			Description:   insufficient.Description,
			Available:     insufficient.Available,
			Requested:     insufficient.Requested,
		})
	case errors.As(err, &missing):
		return c.Status(productNotFound).JSON(dto.ProductNotFoundResponse{
			ErrorResponse: dto.ErrorResponse{Code: dto.CodeProductNotFound, Message: missing.Error()},
			ProductID:     missing.ProductID,
		})
	case errors.As(err, &transition):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeInvalidTransition, Message: transition.Error()})
	case errors.As(err, &pending):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: dto.CodePendingOperation, Message: pending.Error()})
	case errors.As(err, &unavailable):
		if unavailable.Unknown {
			log.Warn().Err(err).Msg("resultado de stock desconocido")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    dto.CodeStockOutcomeUnknown,
				Message: "No se pudo confirmar la operación de stock; reintente la misma acción",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    dto.CodeStockServiceUnavailable,
			Message: "Servicio de stock no disponible",
		})
	case errors.Is(err, domain.ErrIdempotencyMismatch):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: dto.CodeIdempotencyMismatch, Message: err.Error()})
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: dto.CodeInvoiceNotFound, Message: "factura no encontrada"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: dto.CodeNotFound, Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeInvalidInput, Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: dto.CodeDuplicate, Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: dto.CodeConflict, Message: "la factura cambió durante la operación; vuelva a intentarlo"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: dto.CodeInternal, Message: "error interno"})
	}
}

// errorHandler respuesta uniforme para errores de fiber (ruta inexistente, panics recuperados).
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := dto.CodeInvalidInput
			switch fe.Code {
			case fiber.StatusNotFound:
				code = dto.CodeNotFound
			case fiber.StatusInternalServerError:
				code = dto.CodeInternal
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: dto.CodeInternal, Message: "error interno"})
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeInvalidInput, Message: "cuerpo inválido"})
}
