package billing

import (
	"context"

	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// StockLedger puerto hacia el servicio de stock. Aplica el lote completo o nada.
// operationID identifica la operación para que el ledger deduplique reintentos.
//
// Errores esperados: *domain.InsufficientStockError, *domain.ProductNotFoundError,
// domain.ErrIdempotencyMismatch y *domain.StockUnavailableError (transporte).
type StockLedger interface {
	AdjustBatch(ctx context.Context, operationID string, adjustments []entity.StockAdjustment) error
}

// InvoicePDFGenerator genera la representación imprimible de una factura cerrada.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice) ([]byte, error)
}
