package invoice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/invoice"
)

func TestDecide_TransicionesPermitidas(t *testing.T) {
	cases := []struct {
		name   string
		from   entity.InvoiceStatus
		action invoice.Action
		to     entity.InvoiceStatus
		effect invoice.StockEffect
	}{
		{"editar abierta", entity.InvoiceStatusOpen, invoice.ActionEdit, entity.InvoiceStatusOpen, invoice.EffectNone},
		{"imprimir abierta", entity.InvoiceStatusOpen, invoice.ActionPrint, entity.InvoiceStatusClosed, invoice.EffectDebit},
		{"reabrir cerrada", entity.InvoiceStatusClosed, invoice.ActionReopen, entity.InvoiceStatusOpen, invoice.EffectCredit},
		{"cancelar abierta", entity.InvoiceStatusOpen, invoice.ActionCancel, entity.InvoiceStatusCancelled, invoice.EffectNone},
		{"cancelar cerrada", entity.InvoiceStatusClosed, invoice.ActionCancel, entity.InvoiceStatusCancelled, invoice.EffectCredit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := invoice.Decide(tc.from, tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.from, d.From)
			assert.Equal(t, tc.to, d.To)
			assert.Equal(t, tc.effect, d.Effect)
			assert.Equal(t, tc.effect != invoice.EffectNone, d.RequiresStock())
		})
	}
}

func TestDecide_TransicionesInvalidas(t *testing.T) {
	cases := []struct {
		from   entity.InvoiceStatus
		action invoice.Action
	}{
		{entity.InvoiceStatusClosed, invoice.ActionEdit},
		{entity.InvoiceStatusClosed, invoice.ActionPrint},
		{entity.InvoiceStatusOpen, invoice.ActionReopen},
		{entity.InvoiceStatusCancelled, invoice.ActionEdit},
		{entity.InvoiceStatusCancelled, invoice.ActionPrint},
		{entity.InvoiceStatusCancelled, invoice.ActionReopen},
		{entity.InvoiceStatusCancelled, invoice.ActionCancel},
		{entity.InvoiceStatus("DESCONOCIDO"), invoice.ActionPrint},
		{entity.InvoiceStatusOpen, invoice.Action("borrar")},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.action), func(t *testing.T) {
			_, err := invoice.Decide(tc.from, tc.action)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

			var ite *domain.InvalidTransitionError
			require.ErrorAs(t, err, &ite)
			assert.Equal(t, string(tc.from), ite.Current)
			assert.Equal(t, string(tc.action), ite.Requested)
		})
	}
}

func TestDecision_Adjustments(t *testing.T) {
	items := []entity.InvoiceItem{
		{ProductID: "p1", Description: "Tornillo", Quantity: 4},
		{ProductID: "p2", Description: "Tuerca", Quantity: 1},
	}

	debit, err := invoice.Decide(entity.InvoiceStatusOpen, invoice.ActionPrint)
	require.NoError(t, err)
	assert.Equal(t, []entity.StockAdjustment{{ProductID: "p1", Delta: -4}, {ProductID: "p2", Delta: -1}}, debit.Adjustments(items))

	credit, err := invoice.Decide(entity.InvoiceStatusClosed, invoice.ActionCancel)
	require.NoError(t, err)
	assert.Equal(t, []entity.StockAdjustment{{ProductID: "p1", Delta: 4}, {ProductID: "p2", Delta: 1}}, credit.Adjustments(items))

	none, err := invoice.Decide(entity.InvoiceStatusOpen, invoice.ActionCancel)
	require.NoError(t, err)
	assert.Nil(t, none.Adjustments(items))
}
