package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/memory"
)

func TestLedgerStore_RollbackDeshaceEscrituras(t *testing.T) {
	ctx := context.Background()
	store := memory.NewLedgerStore()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", Code: "A", Balance: 10}))

	boom := errors.New("boom")
	err := store.Run(ctx, func(pr repository.ProductRepository, mr repository.StockMovementRepository, or repository.StockOperationRepository) error {
		require.NoError(t, pr.UpdateBalance(ctx, "p1", 3))
		require.NoError(t, mr.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1", Delta: -7}))
		require.NoError(t, or.Create(ctx, &entity.StockOperation{ID: "op-1", Fingerprint: "x"}))
		require.NoError(t, pr.Create(ctx, &entity.Product{ID: "p2", Code: "B"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Balance)

	p2, err := store.Products().GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.Nil(t, p2)

	movs, err := store.Movements().ListByProduct(ctx, "p1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)

	// El token no quedó registrado: una nueva transacción lo puede crear
	err = store.Run(ctx, func(_ repository.ProductRepository, _ repository.StockMovementRepository, or repository.StockOperationRepository) error {
		op, err := or.Get(ctx, "op-1")
		require.NoError(t, err)
		assert.Nil(t, op)
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerStore_Productos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewLedgerStore()
	repo := store.Products()

	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p1", Code: "A"}))
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p2", Code: "B"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Product{ID: "p3", Code: "A"}), domain.ErrDuplicate)

	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ID)

	list, err = repo.List(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)

	// Las lecturas devuelven copias
	got, _ := repo.GetByID(ctx, "p1")
	got.Balance = 99
	again, _ := repo.GetByID(ctx, "p1")
	assert.Equal(t, 0, again.Balance)

	require.NoError(t, repo.Delete(ctx, "p1"))
	gone, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, repo.UpdateBalance(ctx, "p2", -1), domain.ErrInvariantViolation)
}

func TestLedgerStore_GetForUpdateOmiteDesconocidos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewLedgerStore()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "b", Code: "B"}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "a", Code: "A"}))

	err := store.Run(ctx, func(pr repository.ProductRepository, _ repository.StockMovementRepository, _ repository.StockOperationRepository) error {
		list, err := pr.GetForUpdate(ctx, []string{"b", "zz", "a"})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "a", list[0].ID)
		assert.Equal(t, "b", list[1].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerStore_RunRespetaContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewLedgerStore().Run(ctx, func(repository.ProductRepository, repository.StockMovementRepository, repository.StockOperationRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
