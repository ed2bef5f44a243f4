package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

var _ repository.InvoiceTransitionRepository = (*InvoiceTransitionRepo)(nil)

// InvoiceTransitionRepo log de la saga sobre PostgreSQL. El orden lo da la columna seq.
type InvoiceTransitionRepo struct {
	q Querier
}

// NewInvoiceTransitionRepository construye el repositorio (pool o tx).
func NewInvoiceTransitionRepository(q Querier) *InvoiceTransitionRepo {
	return &InvoiceTransitionRepo{q: q}
}

const transitionColumns = `id, invoice_id, version, action, from_status, to_status, operation_id, outcome, error, trace_id, created_at`

func (r *InvoiceTransitionRepo) Create(ctx context.Context, t *entity.InvoiceTransition) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoice_transitions (`+transitionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.InvoiceID, t.Version, t.Action, string(t.FromStatus), string(t.ToStatus),
		t.OperationID, t.Outcome, t.Error, t.TraceID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice transition: %w", err)
	}
	return nil
}

func (r *InvoiceTransitionRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.InvoiceTransition, error) {
	rows, err := r.q.Query(ctx, `SELECT `+transitionColumns+` FROM invoice_transitions WHERE invoice_id = $1 ORDER BY seq`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice transitions: %w", err)
	}
	defer rows.Close()

	var list []*entity.InvoiceTransition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice transition: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *InvoiceTransitionRepo) Last(ctx context.Context, invoiceID string) (*entity.InvoiceTransition, error) {
	row := r.q.QueryRow(ctx, `SELECT `+transitionColumns+` FROM invoice_transitions WHERE invoice_id = $1 ORDER BY seq DESC LIMIT 1`, invoiceID)
	t, err := scanTransition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last invoice transition: %w", err)
	}
	return t, nil
}

func scanTransition(row pgx.Row) (*entity.InvoiceTransition, error) {
	var t entity.InvoiceTransition
	var from, to string
	if err := row.Scan(&t.ID, &t.InvoiceID, &t.Version, &t.Action, &from, &to,
		&t.OperationID, &t.Outcome, &t.Error, &t.TraceID, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.FromStatus = entity.InvoiceStatus(from)
	t.ToStatus = entity.InvoiceStatus(to)
	return &t, nil
}
