package repository

import (
	"context"

	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// StockOperationRepository registra los tokens de operación ya aplicados por el ledger.
// Debe usarse dentro de la misma transacción que aplica el lote.
type StockOperationRepository interface {
	Get(ctx context.Context, id string) (*entity.StockOperation, error)
	Create(ctx context.Context, op *entity.StockOperation) error
}
