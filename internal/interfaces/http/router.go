package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-faturamento/internal/application/billing"
	"github.com/jhoicas/estoque-faturamento/internal/application/inventory"
	"github.com/jhoicas/estoque-faturamento/internal/application/usecase"
	"github.com/jhoicas/estoque-faturamento/pkg/idempotency"
)

// StockRouterDeps dependencias de stock-api.
type StockRouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Ledger      *inventory.AdjustUseCase
	Idempotency idempotency.Store // opcional
	Log         zerolog.Logger
}

// StockRouter registra las rutas del ledger.
func StockRouter(app *fiber.App, deps StockRouterDeps) {
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger, deps.Log)
	stockHandler := NewStockHandler(deps.Ledger, deps.Log)

	products := app.Group("/products", idempotencyMiddleware(deps.Idempotency, deps.Log))
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/movements", productHandler.Movements)
	products.Post("/:id/debit", productHandler.Debit)
	products.Post("/:id/credit", productHandler.Credit)

	// Lotes: la deduplicación la hace el ledger con operation_id
	stock := app.Group("/stock")
	stock.Put("/adjust-batch", stockHandler.AdjustBatch)
	stock.Put("/credit-batch", stockHandler.CreditBatch)
}

// InvoiceRouterDeps dependencias de invoice-api.
type InvoiceRouterDeps struct {
	InvoiceUC    *billing.InvoiceUseCase
	Orchestrator *billing.Orchestrator
	InvoicePDF   *billing.PDFUseCase
	Idempotency  idempotency.Store // opcional
	Log          zerolog.Logger
}

// InvoiceRouter registra las rutas de facturación.
func InvoiceRouter(app *fiber.App, deps InvoiceRouterDeps) {
	h := NewInvoiceHandler(deps.InvoiceUC, deps.Orchestrator, deps.InvoicePDF, deps.Log)

	invoices := app.Group("/invoices", idempotencyMiddleware(deps.Idempotency, deps.Log))
	invoices.Get("/", h.List)
	invoices.Post("/", h.Create)
	invoices.Get("/:id", h.GetByID)
	invoices.Put("/:id", h.Update)
	invoices.Post("/:id/print", h.Print)
	invoices.Post("/:id/reopen", h.Reopen)
	invoices.Post("/:id/cancel", h.Cancel)
	invoices.Get("/:id/transitions", h.Transitions)
	invoices.Get("/:id/pdf", h.PDF)
}

func idempotencyMiddleware(store idempotency.Store, log zerolog.Logger) fiber.Handler {
	if store == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return idempotency.Middleware(store, log)
}
