package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

// PDFUseCase genera la representación imprimible (PDF) de una factura.
// Solo las facturas CLOSED (impresas) tienen PDF.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(invoiceRepo repository.InvoiceRepository, generator InvoicePDFGenerator) *PDFUseCase {
	return &PDFUseCase{invoiceRepo: invoiceRepo, generator: generator}
}

// DownloadInvoicePDF carga la factura, verifica que esté CLOSED y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)      si todo sale bien.
//   - domain.ErrInvoiceNotFound      si la factura no existe.
//   - domain.ErrInvalidTransition    si la factura no está CLOSED.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrInvoiceNotFound
	}
	if inv.Status != entity.InvoiceStatusClosed {
		return nil, "", &domain.InvalidTransitionError{Current: string(inv.Status), Requested: "pdf"}
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("factura_%06d.pdf", inv.Number)
	return pdfBytes, filename, nil
}
