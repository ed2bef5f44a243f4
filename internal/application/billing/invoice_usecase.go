package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/invoice"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

// InvoiceUseCase alta, consulta y edición de facturas. Las transiciones con efecto
// de stock viven en Orchestrator; ambos comparten el mismo KeyedLocker.
type InvoiceUseCase struct {
	invoices    repository.InvoiceRepository
	transitions repository.InvoiceTransitionRepository
	locker      *KeyedLocker
	log         zerolog.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	invoices repository.InvoiceRepository,
	transitions repository.InvoiceTransitionRepository,
	locker *KeyedLocker,
	log zerolog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoices:    invoices,
		transitions: transitions,
		locker:      locker,
		log:         log.With().Str("component", "invoices").Logger(),
	}
}

// Create crea una factura OPEN con al menos una línea.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	items, err := toItems(in.Items)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		Status:    entity.InvoiceStatusOpen,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("crear factura: %w", err)
	}
	uc.log.Info().Str("invoice_id", inv.ID).Int64("number", inv.Number).Int("items", len(items)).Msg("factura creada")
	return ToInvoiceResponse(inv), nil
}

// GetByID devuelve la factura o domain.ErrInvoiceNotFound.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

// List lista facturas con paginación, más recientes primero.
func (uc *InvoiceUseCase) List(ctx context.Context, limit, offset int) (*dto.InvoiceListResponse, error) {
	list, err := uc.invoices.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *ToInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update reemplaza el conjunto completo de líneas. Solo se permite con la factura OPEN
// y sin una operación de stock pendiente de confirmar.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	items, err := toItems(in.Items)
	if err != nil {
		return nil, err
	}

	unlock := uc.locker.Lock(id)
	defer unlock()

	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := invoice.Decide(inv.Status, invoice.ActionEdit); err != nil {
		return nil, err
	}
	if _, err := checkPending(ctx, uc.transitions, inv, invoice.ActionEdit); err != nil {
		return nil, err
	}
	if err := uc.invoices.ReplaceItems(ctx, id, inv.Version, items); err != nil {
		return nil, fmt.Errorf("reemplazar líneas: %w", err)
	}

	inv.Items = items
	inv.Version++
	inv.UpdatedAt = time.Now()
	return ToInvoiceResponse(inv), nil
}

// Transitions devuelve el log de la saga de la factura en orden cronológico.
func (uc *InvoiceUseCase) Transitions(ctx context.Context, id string) ([]dto.TransitionResponse, error) {
	if _, err := uc.load(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.transitions.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransitionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.TransitionResponse{
			ID:          t.ID,
			Version:     t.Version,
			Action:      t.Action,
			FromStatus:  string(t.FromStatus),
			ToStatus:    string(t.ToStatus),
			OperationID: t.OperationID,
			Outcome:     t.Outcome,
			Error:       t.Error,
			TraceID:     t.TraceID,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out, nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

// checkPending rechaza la acción si la última entrada del log, en la misma versión,
// dejó un resultado de stock sin confirmar para otra acción. Si la pendiente es de la
// misma acción la devuelve: el reintento debe resolverla.
func checkPending(ctx context.Context, transitions repository.InvoiceTransitionRepository, inv *entity.Invoice, action invoice.Action) (*entity.InvoiceTransition, error) {
	last, err := transitions.Last(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("consultar log de la saga: %w", err)
	}
	if last == nil || last.Version != inv.Version {
		return nil, nil
	}
	if last.Outcome != entity.TransitionOutcomeUnknown && last.Outcome != entity.TransitionOutcomeInconsistent {
		return nil, nil
	}
	if last.Action != string(action) {
		return nil, &domain.PendingOperationError{InvoiceID: inv.ID, Action: last.Action, OperationID: last.OperationID}
	}
	return last, nil
}

func toItems(in []dto.InvoiceItemRequest) ([]entity.InvoiceItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la factura debe tener al menos una línea", domain.ErrInvalidInput)
	}
	items := make([]entity.InvoiceItem, 0, len(in))
	for i, it := range in {
		productID := strings.TrimSpace(it.ProductID)
		if productID == "" {
			return nil, fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if it.Quantity <= 0 || it.Quantity > entity.MaxQuantity {
			return nil, fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i+1, it.Quantity)
		}
		items = append(items, entity.InvoiceItem{
			ProductID:   productID,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
		})
	}
	return items, nil
}

// ToInvoiceResponse convierte la entidad al DTO de salida.
func ToInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	if inv == nil {
		return nil
	}
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, dto.InvoiceItemResponse{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
		})
	}
	return &dto.InvoiceResponse{
		ID:        inv.ID,
		Number:    inv.Number,
		Status:    string(inv.Status),
		Version:   inv.Version,
		Items:     items,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}
