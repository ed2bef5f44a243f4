package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

var _ repository.StockOperationRepository = (*StockOperationRepo)(nil)

// StockOperationRepo tokens de operación aplicados por el ledger.
type StockOperationRepo struct {
	q Querier
}

// NewStockOperationRepository construye el repositorio (pool o tx).
func NewStockOperationRepository(q Querier) *StockOperationRepo {
	return &StockOperationRepo{q: q}
}

func (r *StockOperationRepo) Get(ctx context.Context, id string) (*entity.StockOperation, error) {
	var op entity.StockOperation
	err := r.q.QueryRow(ctx, `SELECT id, fingerprint, created_at FROM stock_operations WHERE id = $1`, id).
		Scan(&op.ID, &op.Fingerprint, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock operation: %w", err)
	}
	return &op, nil
}

// Create registra el token. Un duplicado significa que otra tx lo aplicó primero.
func (r *StockOperationRepo) Create(ctx context.Context, op *entity.StockOperation) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO stock_operations (id, fingerprint, created_at) VALUES ($1, $2, $3)`,
		op.ID, op.Fingerprint, op.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock operation: %w", err)
	}
	return nil
}
