package inventory

import (
	"context"

	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger: o se aplica el lote completo o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		operationRepo repository.StockOperationRepository,
	) error) error
}
