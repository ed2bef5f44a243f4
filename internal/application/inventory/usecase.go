package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/inventory"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

// AdjustUseCase aplica débitos y créditos de stock de forma transaccional
// con bloqueo de fila por producto (SELECT FOR UPDATE) y Commit/Rollback.
type AdjustUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
	now      func() time.Time
}

// NewAdjustUseCase construye el caso de uso.
func NewAdjustUseCase(txRunner TxRunner, log zerolog.Logger) *AdjustUseCase {
	return &AdjustUseCase{
		txRunner: txRunner,
		log:      log.With().Str("component", "stock-ledger").Logger(),
		now:      time.Now,
	}
}

// AdjustBatchInput lote de ajustes. OperationID es opcional; si viene, el ledger deduplica reintentos.
type AdjustBatchInput struct {
	OperationID string
	Source      string
	Items       []entity.StockAdjustment
}

// AdjustResult saldos resultantes de los productos del lote, en orden de aparición.
type AdjustResult struct {
	OperationID string
	Replayed    bool
	Products    []*entity.Product
}

// AdjustBatch valida todo el lote y luego lo aplica completo dentro de una transacción.
// Errores: domain.ErrInvalidInput, *domain.ProductNotFoundError, *domain.InsufficientStockError,
// domain.ErrIdempotencyMismatch. Ante cualquier error no se aplica nada.
func (uc *AdjustUseCase) AdjustBatch(ctx context.Context, in AdjustBatchInput) (*AdjustResult, error) {
	if err := inventory.ValidateBatch(in.Items); err != nil {
		return nil, err
	}
	source := in.Source
	if source == "" {
		source = entity.MovementSourceBatch
	}
	fingerprint := inventory.Fingerprint(in.Items)
	ids := inventory.ProductIDs(in.Items)

	// Orden determinista de bloqueo para evitar deadlocks entre lotes concurrentes
	lockOrder := append([]string(nil), ids...)
	sort.Strings(lockOrder)

	var result *AdjustResult
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		operationRepo repository.StockOperationRepository,
	) error {
		locked, err := productRepo.GetForUpdate(ctx, lockOrder)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.Product, len(locked))
		for _, p := range locked {
			byID[p.ID] = p
		}

		if in.OperationID != "" {
			op, err := operationRepo.Get(ctx, in.OperationID)
			if err != nil {
				return err
			}
			if op != nil {
				if op.Fingerprint != fingerprint {
					return domain.ErrIdempotencyMismatch
				}
				result = &AdjustResult{OperationID: in.OperationID, Replayed: true, Products: inOrder(ids, byID)}
				return nil
			}
		}

		changes, err := inventory.PlanBatch(in.Items, byID)
		if err != nil {
			return err
		}

		now := uc.now()
		for _, ch := range changes {
			if ch.NewBalance < 0 {
				return fmt.Errorf("%w: saldo negativo planificado para %s", domain.ErrInvariantViolation, ch.Product.ID)
			}
			if err := productRepo.UpdateBalance(ctx, ch.Product.ID, ch.NewBalance); err != nil {
				return err
			}
			kind := entity.MovementKindCredit
			if ch.Delta < 0 {
				kind = entity.MovementKindDebit
			}
			mov := &entity.StockMovement{
				ID:           uuid.New().String(),
				OperationID:  in.OperationID,
				ProductID:    ch.Product.ID,
				Kind:         kind,
				Source:       source,
				Delta:        ch.Delta,
				BalanceAfter: ch.NewBalance,
				CreatedAt:    now,
			}
			if err := movementRepo.Create(ctx, mov); err != nil {
				return err
			}
			ch.Product.Balance = ch.NewBalance
			ch.Product.UpdatedAt = now
		}

		if in.OperationID != "" {
			if err := operationRepo.Create(ctx, &entity.StockOperation{
				ID:          in.OperationID,
				Fingerprint: fingerprint,
				CreatedAt:   now,
			}); err != nil {
				return err
			}
		}
		result = &AdjustResult{OperationID: in.OperationID, Products: inOrder(ids, byID)}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvariantViolation) {
			uc.log.Error().Err(err).Str("operation_id", in.OperationID).Msg("invariante del ledger violada")
		}
		return nil, err
	}

	if result.Replayed {
		uc.log.Info().Str("operation_id", in.OperationID).Msg("operación ya aplicada, se devuelve el resultado sin reaplicar")
	} else {
		uc.log.Debug().Str("operation_id", in.OperationID).Int("items", len(in.Items)).Msg("lote aplicado")
	}
	return result, nil
}

// AdjustOne aplica un ajuste manual sobre un producto (delta distinto de cero).
func (uc *AdjustUseCase) AdjustOne(ctx context.Context, productID string, delta int) (*entity.Product, error) {
	res, err := uc.AdjustBatch(ctx, AdjustBatchInput{
		Source: entity.MovementSourceManual,
		Items:  []entity.StockAdjustment{{ProductID: productID, Delta: delta}},
	})
	if err != nil {
		return nil, err
	}
	return res.Products[0], nil
}

func inOrder(ids []string, byID map[string]*entity.Product) []*entity.Product {
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
