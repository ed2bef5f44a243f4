package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-faturamento/internal/application/billing"
	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
)

// InvoiceHandler maneja facturas y las transiciones que pasan por el servicio de stock.
type InvoiceHandler struct {
	invoices *billing.InvoiceUseCase
	saga     *billing.Orchestrator
	pdf      *billing.PDFUseCase
	log      zerolog.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(invoices *billing.InvoiceUseCase, saga *billing.Orchestrator, pdf *billing.PDFUseCase, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, saga: saga, pdf: pdf, log: log}
}

// Create godoc
// @Summary      Crear factura
// @Description  La factura queda OPEN. La descripción de cada línea es una copia tomada en este momento.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Líneas de la factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.invoices.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusBadRequest)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.invoices.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusBadRequest)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.InvoiceListResponse
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.invoices.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusBadRequest)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Reemplazar las líneas de una factura
// @Description  Solo permitido mientras la factura está OPEN.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la factura"
// @Param        body  body  dto.UpdateInvoiceRequest  true  "Nuevo conjunto de líneas"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.invoices.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusBadRequest)
	}
	return c.JSON(out)
}

// Print godoc
// @Summary      Imprimir factura
// @Description  Debita el stock de todas las líneas en un solo lote y cierra la factura (OPEN → CLOSED).
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.InsufficientStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /invoices/{id}/print [post]
func (h *InvoiceHandler) Print(c *fiber.Ctx) error {
	return h.transition(c, h.saga.Print)
}

// Reopen godoc
// @Summary      Reabrir factura
// @Description  Devuelve el stock y vuelve a OPEN (CLOSED → OPEN).
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /invoices/{id}/reopen [post]
func (h *InvoiceHandler) Reopen(c *fiber.Ctx) error {
	return h.transition(c, h.saga.Reopen)
}

// Cancel godoc
// @Summary      Cancelar factura
// @Description  Desde CLOSED devuelve el stock. CANCELLED es terminal.
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.saga.Cancel)
}

func (h *InvoiceHandler) transition(c *fiber.Ctx, fn func(context.Context, string) (*dto.InvoiceResponse, error)) error {
	out, err := fn(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusBadRequest)
	}
	return c.JSON(out)
}

// Transitions godoc
// @Summary      Historial de transiciones de la factura
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {array}   dto.TransitionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /invoices/{id}/transitions [get]
func (h *InvoiceHandler) Transitions(c *fiber.Ctx) error {
	out, err := h.invoices.Transitions(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusBadRequest)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descargar PDF de una factura impresa
// @Tags         invoices
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err, fiber.StatusBadRequest)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}
