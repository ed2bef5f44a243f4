package repository

import (
	"context"

	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	// Create persiste la factura con sus líneas y asigna Number.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
	// ReplaceItems sustituye todas las líneas de forma atómica si la versión coincide;
	// devuelve domain.ErrConflict si otro proceso modificó la factura.
	ReplaceItems(ctx context.Context, id string, expectedVersion int, items []entity.InvoiceItem) error
	// UpdateStatus cambia el estado si la versión coincide (domain.ErrConflict si no).
	UpdateStatus(ctx context.Context, id string, expectedVersion int, status entity.InvoiceStatus) error
}
