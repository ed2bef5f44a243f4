package inventory_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/inventory"
)

func products(ps ...*entity.Product) map[string]*entity.Product {
	m := make(map[string]*entity.Product, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	return m
}

func TestPlanBatch_DebitoDentroDelSaldo(t *testing.T) {
	p := &entity.Product{ID: "p1", Description: "Tornillo", Balance: 10}
	changes, err := inventory.PlanBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: -4}}, products(p))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 6, changes[0].NewBalance)
	assert.Equal(t, -4, changes[0].Delta)
	assert.Equal(t, 10, p.Balance, "planificar no debe mutar el producto")
}

func TestPlanBatch_SaldoInsuficienteRechazaTodoElLote(t *testing.T) {
	ps := products(
		&entity.Product{ID: "p1", Description: "Tornillo", Balance: 10},
		&entity.Product{ID: "p2", Description: "Tuerca", Balance: 3},
	)
	_, err := inventory.PlanBatch([]entity.StockAdjustment{
		{ProductID: "p1", Delta: -1},
		{ProductID: "p2", Delta: -5},
	}, ps)
	require.Error(t, err)

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "p2", ise.ProductID)
	assert.Equal(t, "Tuerca", ise.Description)
	assert.Equal(t, 3, ise.Available)
	assert.Equal(t, 5, ise.Requested)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestPlanBatch_AgregaLineasDelMismoProducto(t *testing.T) {
	ps := products(&entity.Product{ID: "p1", Description: "Tornillo", Balance: 5})
	_, err := inventory.PlanBatch([]entity.StockAdjustment{
		{ProductID: "p1", Delta: -3},
		{ProductID: "p1", Delta: -3},
	}, ps)

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise, "dos líneas de 3 sobre saldo 5 deben rechazarse juntas")
	assert.Equal(t, 6, ise.Requested)
}

func TestPlanBatch_ProductoDesconocido(t *testing.T) {
	_, err := inventory.PlanBatch([]entity.StockAdjustment{{ProductID: "fantasma", Delta: 2}}, products())
	var pnf *domain.ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, "fantasma", pnf.ProductID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPlanBatch_CreditoSinLimite(t *testing.T) {
	ps := products(&entity.Product{ID: "p1", Balance: 0})
	changes, err := inventory.PlanBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: 1_000_000}}, ps)
	require.NoError(t, err)
	assert.Equal(t, 1_000_000, changes[0].NewBalance)
}

func TestPlanBatch_CreditoQueDesbordaElSaldo(t *testing.T) {
	p := &entity.Product{ID: "p1", Balance: 10}
	_, err := inventory.PlanBatch([]entity.StockAdjustment{
		{ProductID: "p1", Delta: entity.MaxQuantity},
		{ProductID: "p1", Delta: entity.MaxQuantity},
	}, products(p))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 10, p.Balance)

	_, err = inventory.PlanBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: entity.MaxQuantity - 5}}, products(p))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	changes, err := inventory.PlanBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: entity.MaxQuantity - 10}}, products(p))
	require.NoError(t, err)
	assert.Equal(t, entity.MaxQuantity, changes[0].NewBalance)
}

func TestPlanBatch_DebitosAgregadosGrandesSonSaldoInsuficiente(t *testing.T) {
	p := &entity.Product{ID: "p1", Balance: 10}
	_, err := inventory.PlanBatch([]entity.StockAdjustment{
		{ProductID: "p1", Delta: -entity.MaxQuantity},
		{ProductID: "p1", Delta: -entity.MaxQuantity},
	}, products(p))
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2*entity.MaxQuantity, ise.Requested)
}

func TestValidateBatch(t *testing.T) {
	assert.ErrorIs(t, inventory.ValidateBatch(nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: 0}}), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateBatch([]entity.StockAdjustment{{ProductID: "", Delta: 1}}), domain.ErrInvalidInput)
	assert.NoError(t, inventory.ValidateBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: -1}}))
	assert.ErrorIs(t, inventory.ValidateBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: entity.MaxQuantity + 1}}), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: math.MinInt}}), domain.ErrInvalidInput)
	assert.NoError(t, inventory.ValidateBatch([]entity.StockAdjustment{{ProductID: "p1", Delta: -entity.MaxQuantity}}))
}

func TestProductIDs_OrdenDePrimeraAparicion(t *testing.T) {
	ids := inventory.ProductIDs([]entity.StockAdjustment{
		{ProductID: "b", Delta: 1}, {ProductID: "a", Delta: 1}, {ProductID: "b", Delta: 2},
	})
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestFingerprint(t *testing.T) {
	a := []entity.StockAdjustment{{ProductID: "p1", Delta: -4}, {ProductID: "p2", Delta: -1}}
	b := []entity.StockAdjustment{{ProductID: "p1", Delta: -4}, {ProductID: "p2", Delta: -1}}
	c := []entity.StockAdjustment{{ProductID: "p1", Delta: -4}, {ProductID: "p2", Delta: -2}}
	assert.Equal(t, inventory.Fingerprint(a), inventory.Fingerprint(b))
	assert.NotEqual(t, inventory.Fingerprint(a), inventory.Fingerprint(c))
	assert.Len(t, inventory.Fingerprint(a), 64)
}
