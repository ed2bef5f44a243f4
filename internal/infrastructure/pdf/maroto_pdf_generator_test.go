package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/pdf"
)

func TestMarotoPDFGenerator_GeneraDocumento(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator("Depósito Central")
	inv := &entity.Invoice{
		ID:        "3c1f0f3e-9a4e-4a55-a8e1-0d7c2b3f5e11",
		Number:    42,
		Status:    entity.InvoiceStatusClosed,
		Version:   1,
		UpdatedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Items: []entity.InvoiceItem{
			{ProductID: "p1", Description: "Tornillo", Quantity: 4},
			{ProductID: "p2", Quantity: 1},
		},
	}

	data, err := gen.GenerateInvoicePDF(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "debe ser un PDF")
}
