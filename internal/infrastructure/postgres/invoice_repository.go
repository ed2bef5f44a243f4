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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository. Cabecera y líneas se escriben en la misma tx.
type InvoiceRepo struct {
	db DB
}

// NewInvoiceRepository construye el adaptador (pool o tx).
func NewInvoiceRepository(db DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

// Create inserta la factura con sus líneas y asigna Number desde invoice_number_seq.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO invoices (id, status, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING number`,
			inv.ID, string(inv.Status), inv.Version, inv.CreatedAt, inv.UpdatedAt,
		).Scan(&inv.Number)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert invoice: %w", err)
		}
		return insertItems(ctx, tx, inv.ID, inv.Items)
	})
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT id, number, status, version, created_at, updated_at
		FROM invoices WHERE id = $1`, id,
	).Scan(&inv.ID, &inv.Number, &status, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.Status = entity.InvoiceStatus(status)

	items, err := r.itemsByInvoice(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	inv.Items = items[id]
	return &inv, nil
}

// List devuelve facturas de la más reciente a la más antigua, con sus líneas.
func (r *InvoiceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, number, status, version, created_at, updated_at
		FROM invoices ORDER BY number DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	var (
		list []*entity.Invoice
		ids  []string
	)
	for rows.Next() {
		var inv entity.Invoice
		var status string
		if err := rows.Scan(&inv.ID, &inv.Number, &status, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.Status = entity.InvoiceStatus(status)
		list = append(list, &inv)
		ids = append(ids, inv.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.itemsByInvoice(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range list {
		inv.Items = items[inv.ID]
	}
	return list, nil
}

// ReplaceItems sustituye las líneas si la versión coincide e incrementa la versión.
func (r *InvoiceRepo) ReplaceItems(ctx context.Context, id string, expectedVersion int, items []entity.InvoiceItem) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := bumpVersion(ctx, tx, id, expectedVersion, `UPDATE invoices SET version = version + 1, updated_at = now()
			WHERE id = $1 AND version = $2`); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
			return fmt.Errorf("delete invoice items: %w", err)
		}
		return insertItems(ctx, tx, id, items)
	})
}

// UpdateStatus cambia el estado si la versión coincide e incrementa la versión.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id string, expectedVersion int, status entity.InvoiceStatus) error {
	return bumpVersion(ctx, r.db, id, expectedVersion, `UPDATE invoices SET status = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2`, string(status))
}

// bumpVersion ejecuta un UPDATE condicionado por versión y traduce 0 filas a
// domain.ErrInvoiceNotFound o domain.ErrConflict.
func bumpVersion(ctx context.Context, q Querier, id string, expectedVersion int, query string, extra ...any) error {
	args := append([]any{id, expectedVersion}, extra...)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check invoice: %w", err)
	}
	if !exists {
		return domain.ErrInvoiceNotFound
	}
	return domain.ErrConflict
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID string, items []entity.InvoiceItem) error {
	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(`
			INSERT INTO invoice_items (invoice_id, position, product_id, description, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			invoiceID, i, it.ProductID, it.Description, it.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert invoice items: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) itemsByInvoice(ctx context.Context, ids []string) (map[string][]entity.InvoiceItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT invoice_id, product_id, description, quantity
		FROM invoice_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.InvoiceItem, len(ids))
	for rows.Next() {
		var invoiceID string
		var it entity.InvoiceItem
		if err := rows.Scan(&invoiceID, &it.ProductID, &it.Description, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		out[invoiceID] = append(out[invoiceID], it)
	}
	return out, rows.Err()
}
