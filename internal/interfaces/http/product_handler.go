package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/application/inventory"
	"github.com/jhoicas/estoque-faturamento/internal/application/usecase"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// ProductHandler maneja las peticiones HTTP de productos y ajustes manuales del ledger.
type ProductHandler struct {
	uc     *usecase.ProductUseCase
	ledger *inventory.AdjustUseCase
	log    zerolog.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, ledger *inventory.AdjustUseCase, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, ledger: ledger, log: log}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Código, descripción y saldo inicial"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusNotFound)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: dto.CodeNotFound, Message: "producto no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusNotFound)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  No verifica facturas que lo referencien.
// @Tags         products
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ProductNotFoundResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err, fiber.StatusNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Movements godoc
// @Summary      Diario de movimientos del producto
// @Tags         products
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.MovementListResponse
// @Failure      404     {object}  dto.ProductNotFoundResponse
// @Router       /products/{id}/movements [get]
func (h *ProductHandler) Movements(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.Movements(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusNotFound)
	}
	return c.JSON(out)
}

// Debit godoc
// @Summary      Retirar stock de un producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del producto"
// @Param        body  body  dto.QuantityRequest  true  "Cantidad (> 0)"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.InsufficientStockResponse
// @Failure      404   {object}  dto.ProductNotFoundResponse
// @Router       /products/{id}/debit [post]
func (h *ProductHandler) Debit(c *fiber.Ctx) error {
	return h.adjust(c, -1)
}

// Credit godoc
// @Summary      Agregar stock a un producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del producto"
// @Param        body  body  dto.QuantityRequest  true  "Cantidad (> 0)"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ProductNotFoundResponse
// @Router       /products/{id}/credit [post]
func (h *ProductHandler) Credit(c *fiber.Ctx) error {
	return h.adjust(c, 1)
}

func (h *ProductHandler) adjust(c *fiber.Ctx, sign int) error {
	var in dto.QuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Quantity <= 0 || in.Quantity > entity.MaxQuantity {
		// Un producto inexistente responde 404 aunque la cantidad sea inválida
		product, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, h.log, err, fiber.StatusNotFound)
		}
		if product == nil {
			return writeError(c, h.log, &domain.ProductNotFoundError{ProductID: c.Params("id")}, fiber.StatusNotFound)
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    dto.CodeInvalidInput,
			Message: fmt.Sprintf("quantity debe estar entre 1 y %d", entity.MaxQuantity),
		})
	}
	product, err := h.ledger.AdjustOne(c.UserContext(), c.Params("id"), sign*in.Quantity)
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusNotFound)
	}
	return c.JSON(usecase.ToProductResponse(product))
}
