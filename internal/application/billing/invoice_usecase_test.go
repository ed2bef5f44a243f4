package billing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/internal/application/billing"
	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

func TestInvoiceUseCase_CreateValidaLineas(t *testing.T) {
	env := newSagaEnv(t)
	ctx := context.Background()

	_, err := env.invoiceUC.Create(ctx, dto.CreateInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.invoiceUC.Create(ctx, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{{ProductID: "P", Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.invoiceUC.Create(ctx, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{{ProductID: "  ", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	inv, err := env.invoiceUC.Create(ctx, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{line("P", 2)}})
	require.NoError(t, err)
	assert.Equal(t, string(entity.InvoiceStatusOpen), inv.Status)
	assert.Equal(t, int64(1), inv.Number)
	assert.Equal(t, 0, inv.Version)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Producto P", inv.Items[0].Description)
}

func TestInvoiceUseCase_UpdateSoloAbierta(t *testing.T) {
	env := newSagaEnv(t, &entity.Product{ID: "P", Code: "P", Balance: 10})
	ctx := context.Background()
	inv := env.createInvoice(t, line("P", 2))

	out, err := env.invoiceUC.Update(ctx, inv.ID, dto.UpdateInvoiceRequest{Items: []dto.InvoiceItemRequest{line("P", 3), line("Q", 1)}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Version)
	require.Len(t, out.Items, 2)

	stored, err := env.invoiceUC.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Items[0].Quantity)
	assert.Equal(t, "Q", stored.Items[1].ProductID)

	// Imprimir usa las líneas editadas
	_, err = env.invoiceUC.Update(ctx, inv.ID, dto.UpdateInvoiceRequest{Items: []dto.InvoiceItemRequest{line("P", 3)}})
	require.NoError(t, err)
	_, err = env.orch.Print(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, env.balance(t, "P"))

	_, err = env.invoiceUC.Update(ctx, inv.ID, dto.UpdateInvoiceRequest{Items: []dto.InvoiceItemRequest{line("P", 1)}})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = env.invoiceUC.Update(ctx, "no-existe", dto.UpdateInvoiceRequest{Items: []dto.InvoiceItemRequest{line("P", 1)}})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestInvoiceUseCase_ListYTransiciones(t *testing.T) {
	env := newSagaEnv(t)
	ctx := context.Background()
	first := env.createInvoice(t, line("P", 1))
	env.createInvoice(t, line("P", 1))

	list, err := env.invoiceUC.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, int64(2), list.Items[0].Number)

	_, err = env.orch.Cancel(ctx, first.ID)
	require.NoError(t, err)
	log, err := env.invoiceUC.Transitions(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "cancel", log[0].Action)
	assert.Empty(t, log[0].OperationID)

	_, err = env.invoiceUC.Transitions(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestKeyedLocker_SerializaPorClaveYLibera(t *testing.T) {
	l := billing.NewKeyedLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("f1")
			defer unlock()
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.Len())
}
