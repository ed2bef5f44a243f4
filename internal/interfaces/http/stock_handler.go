package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/application/inventory"
	"github.com/jhoicas/estoque-faturamento/internal/application/usecase"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// StockHandler expone los lotes del ledger que consume invoice-api.
type StockHandler struct {
	ledger *inventory.AdjustUseCase
	log    zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.AdjustUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, log: log}
}

// AdjustBatch godoc
// @Summary      Debitar un lote de productos
// @Description  Todo o nada: si una línea falla no se aplica ninguna. operation_id repetido con el mismo contenido
// @Description  devuelve el resultado sin volver a aplicar.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchRequest  true  "Líneas con cantidad > 0"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.InsufficientStockResponse
// @Failure      404   {object}  dto.ProductNotFoundResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /stock/adjust-batch [put]
func (h *StockHandler) AdjustBatch(c *fiber.Ctx) error {
	return h.apply(c, -1)
}

// CreditBatch godoc
// @Summary      Acreditar un lote de productos
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchRequest  true  "Líneas con cantidad > 0"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ProductNotFoundResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /stock/credit-batch [put]
func (h *StockHandler) CreditBatch(c *fiber.Ctx) error {
	return h.apply(c, 1)
}

func (h *StockHandler) apply(c *fiber.Ctx, sign int) error {
	var in dto.BatchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeInvalidInput, Message: "items es requerido"})
	}
	items := make([]entity.StockAdjustment, 0, len(in.Items))
	for _, it := range in.Items {
		// El signo lo define la ruta: una cantidad negativa invertiría la operación
		if it.ProductID == "" || it.Quantity <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    dto.CodeInvalidInput,
				Message: "cada línea requiere product_id y quantity mayor que cero",
			})
		}
		items = append(items, entity.StockAdjustment{ProductID: it.ProductID, Delta: sign * it.Quantity})
	}

	res, err := h.ledger.AdjustBatch(c.UserContext(), inventory.AdjustBatchInput{
		OperationID: in.OperationID,
		Source:      entity.MovementSourceBatch,
		Items:       items,
	})
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusNotFound)
	}

	out := dto.BatchResponse{
		OperationID: res.OperationID,
		Replayed:    res.Replayed,
		Products:    make([]dto.ProductResponse, 0, len(res.Products)),
	}
	for _, p := range res.Products {
		out.Products = append(out.Products, *usecase.ToProductResponse(p))
	}
	return c.JSON(out)
}
