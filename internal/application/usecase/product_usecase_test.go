package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/application/usecase"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/memory"
)

func newProductUseCase() *usecase.ProductUseCase {
	store := memory.NewLedgerStore()
	return usecase.NewProductUseCase(store.Products(), store.Movements())
}

func TestProductUseCase_CreateYGet(t *testing.T) {
	uc := newProductUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateProductRequest{Code: " A-1 ", Description: "Tornillo", Balance: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "A-1", created.Code)
	assert.Equal(t, 10, created.Balance)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tornillo", got.Description)

	missing, err := uc.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductUseCase_CreateValidaEntrada(t *testing.T) {
	uc := newProductUseCase()
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Code: "", Description: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "A", Description: "x", Balance: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "A", Description: "x"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "A", Description: "y"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUseCase_DeleteYMovimientosDeDesconocido(t *testing.T) {
	uc := newProductUseCase()
	ctx := context.Background()

	assert.ErrorIs(t, uc.Delete(ctx, "nope"), domain.ErrProductNotFound)
	_, err := uc.Movements(ctx, "nope", 10, 0)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	created, err := uc.Create(ctx, dto.CreateProductRequest{Code: "A", Description: "x"})
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, created.ID))

	list, err := uc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}
