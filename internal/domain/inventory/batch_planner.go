package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// Change saldo resultante de un producto tras aplicar su delta agregado.
type Change struct {
	Product    *entity.Product
	Delta      int
	NewBalance int
}

// ProductIDs devuelve los IDs distintos del lote en orden de primera aparición.
func ProductIDs(adjustments []entity.StockAdjustment) []string {
	seen := make(map[string]struct{}, len(adjustments))
	ids := make([]string, 0, len(adjustments))
	for _, a := range adjustments {
		if _, ok := seen[a.ProductID]; ok {
			continue
		}
		seen[a.ProductID] = struct{}{}
		ids = append(ids, a.ProductID)
	}
	return ids
}

// ValidateBatch rechaza lotes vacíos, IDs vacíos, deltas en cero y deltas fuera de ±MaxQuantity.
func ValidateBatch(adjustments []entity.StockAdjustment) error {
	if len(adjustments) == 0 {
		return domain.ErrInvalidInput
	}
	for _, a := range adjustments {
		if a.ProductID == "" || a.Delta == 0 {
			return domain.ErrInvalidInput
		}
		if a.Delta > entity.MaxQuantity || a.Delta < -entity.MaxQuantity {
			return fmt.Errorf("%w: delta %d fuera de rango para el producto %s", domain.ErrInvalidInput, a.Delta, a.ProductID)
		}
	}
	return nil
}

// PlanBatch valida todo el lote contra los saldos actuales antes de aplicar nada
// (servicio de dominio: valida todo, luego se aplica todo).
// Los deltas de un mismo producto se suman; el saldo resultante nunca puede ser negativo
// ni superar entity.MaxQuantity.
// products debe contener los productos existentes indexados por ID.
func PlanBatch(adjustments []entity.StockAdjustment, products map[string]*entity.Product) ([]Change, error) {
	if err := ValidateBatch(adjustments); err != nil {
		return nil, err
	}
	totals := make(map[string]int64, len(adjustments))
	for _, a := range adjustments {
		totals[a.ProductID] += int64(a.Delta)
	}

	ids := ProductIDs(adjustments)
	changes := make([]Change, 0, len(ids))
	for _, id := range ids {
		p, ok := products[id]
		if !ok || p == nil {
			return nil, &domain.ProductNotFoundError{ProductID: id}
		}
		delta := totals[id]
		newBalance := int64(p.Balance) + delta
		if newBalance < 0 {
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				Description: p.Description,
				Available:   p.Balance,
				Requested:   int(-delta),
			}
		}
		if newBalance > entity.MaxQuantity || delta > entity.MaxQuantity {
			return nil, fmt.Errorf("%w: el saldo de %s superaría %d", domain.ErrInvalidInput, p.ID, entity.MaxQuantity)
		}
		changes = append(changes, Change{Product: p, Delta: int(delta), NewBalance: int(newBalance)})
	}
	return changes, nil
}

// Fingerprint resume el contenido del lote (en orden) para detectar la reutilización
// de un token de operación con otro payload.
func Fingerprint(adjustments []entity.StockAdjustment) string {
	h := sha256.New()
	for _, a := range adjustments {
		fmt.Fprintf(h, "%s:%d;", a.ProductID, a.Delta)
	}
	return hex.EncodeToString(h.Sum(nil))
}
