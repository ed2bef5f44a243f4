package repository

import (
	"context"

	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el diario del ledger.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
