package repository

import (
	"context"

	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// InvoiceTransitionRepository persiste el log de la saga por factura.
type InvoiceTransitionRepository interface {
	Create(ctx context.Context, t *entity.InvoiceTransition) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.InvoiceTransition, error)
	// Last devuelve la entrada más reciente de la factura o nil si no hay ninguna.
	Last(ctx context.Context, invoiceID string) (*entity.InvoiceTransition, error)
}
