package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/invoice"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

// DefaultStockTimeout tiempo máximo de la llamada al ledger si no se configura otro.
const DefaultStockTimeout = 5 * time.Second

// Orchestrator coordina las transiciones print/reopen/cancel con el servicio de stock.
//
// Flujo por transición (bajo el lock de la factura):
//  1. Cargar factura y decidir con la máquina de estados.
//  2. Rechazar si hay otra acción con resultado de stock sin confirmar.
//  3. Si hay efecto de stock: un único intento contra el ledger con timeout.
//  4. Persistir el nuevo estado con control de versión.
//  5. Registrar el resultado en el log de la saga.
//
// El token de operación es determinista por (factura, acción, versión): reintentar la
// misma acción tras un resultado desconocido no duplica el movimiento de stock.
type Orchestrator struct {
	invoices    repository.InvoiceRepository
	transitions repository.InvoiceTransitionRepository
	ledger      StockLedger
	locker      *KeyedLocker
	timeout     time.Duration
	log         zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewOrchestrator construye el orquestador. timeout <= 0 usa DefaultStockTimeout.
func NewOrchestrator(
	invoices repository.InvoiceRepository,
	transitions repository.InvoiceTransitionRepository,
	ledger StockLedger,
	locker *KeyedLocker,
	timeout time.Duration,
	log zerolog.Logger,
) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultStockTimeout
	}
	return &Orchestrator{
		invoices:    invoices,
		transitions: transitions,
		ledger:      ledger,
		locker:      locker,
		timeout:     timeout,
		log:         log.With().Str("component", "saga").Logger(),
		tracer:      otel.Tracer("github.com/jhoicas/estoque-faturamento/internal/application/billing"),
		now:         time.Now,
	}
}

// OperationID token determinista de la operación de stock de una transición.
func OperationID(invoiceID string, action invoice.Action, version int) string {
	return fmt.Sprintf("%s:%s:v%d", invoiceID, action, version)
}

// Print OPEN → CLOSED, debita las líneas.
func (o *Orchestrator) Print(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	return o.transition(ctx, invoiceID, invoice.ActionPrint)
}

// Reopen CLOSED → OPEN, devuelve las líneas al stock.
func (o *Orchestrator) Reopen(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	return o.transition(ctx, invoiceID, invoice.ActionReopen)
}

// Cancel OPEN|CLOSED → CANCELLED; desde CLOSED devuelve las líneas al stock.
func (o *Orchestrator) Cancel(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	return o.transition(ctx, invoiceID, invoice.ActionCancel)
}

func (o *Orchestrator) transition(ctx context.Context, invoiceID string, action invoice.Action) (*dto.InvoiceResponse, error) {
	ctx, span := o.tracer.Start(ctx, "invoice."+string(action), trace.WithAttributes(
		attribute.String("invoice.id", invoiceID),
		attribute.String("invoice.action", string(action)),
	))
	defer span.End()

	inv, err := o.run(ctx, span, invoiceID, action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

func (o *Orchestrator) run(ctx context.Context, span trace.Span, invoiceID string, action invoice.Action) (*entity.Invoice, error) {
	unlock := o.locker.Lock(invoiceID)
	defer unlock()

	inv, err := o.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("cargar factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	decision, err := invoice.Decide(inv.Status, action)
	if err != nil {
		return nil, err
	}
	pending, err := checkPending(ctx, o.transitions, inv, action)
	if err != nil {
		return nil, err
	}

	opID := ""
	if decision.RequiresStock() {
		opID = OperationID(inv.ID, action, inv.Version)
		span.SetAttributes(
			attribute.String("stock.operation_id", opID),
			attribute.String("stock.effect", decision.Effect.String()),
		)
		if err := o.callLedger(ctx, opID, decision.Adjustments(inv.Items)); err != nil {
			outcome := failureOutcome(err, pending)
			o.log.Warn().Err(err).
				Str("invoice_id", inv.ID).
				Str("action", string(action)).
				Str("operation_id", opID).
				Str("outcome", outcome).
				Msg("operación de stock fallida, la factura no cambia de estado")
			o.record(ctx, inv, decision, opID, outcome, err)
			return nil, err
		}
	}

	// Con el stock ya aplicado, la persistencia no depende de la cancelación del caller
	persistCtx := ctx
	if decision.RequiresStock() {
		persistCtx = context.WithoutCancel(ctx)
	}
	if err := o.invoices.UpdateStatus(persistCtx, inv.ID, inv.Version, decision.To); err != nil {
		if decision.RequiresStock() {
			o.log.Error().Err(err).
				Str("invoice_id", inv.ID).
				Str("action", string(action)).
				Str("operation_id", opID).
				Msg("stock aplicado pero el estado no se pudo persistir; reintente la misma acción")
			o.record(ctx, inv, decision, opID, entity.TransitionOutcomeInconsistent, err)
		}
		return nil, fmt.Errorf("persistir estado %s: %w", decision.To, err)
	}

	o.record(ctx, inv, decision, opID, entity.TransitionOutcomeCompleted, nil)
	o.log.Info().
		Str("invoice_id", inv.ID).
		Str("from", string(decision.From)).
		Str("to", string(decision.To)).
		Str("operation_id", opID).
		Msg("transición completada")

	inv.Status = decision.To
	inv.Version++
	inv.UpdatedAt = o.now()
	return inv, nil
}

// failureOutcome clasifica un intento fallido contra el ledger. Un intento que no llegó
// a recibir respuesta del ledger no resuelve una pendiente previa: se conserva su resultado.
func failureOutcome(err error, pending *entity.InvoiceTransition) string {
	if ledgerDecided(err) {
		return entity.TransitionOutcomeAborted
	}
	var sue *domain.StockUnavailableError
	switch {
	case pending != nil:
		return pending.Outcome
	case errors.As(err, &sue) && sue.Unknown:
		return entity.TransitionOutcomeUnknown
	default:
		return entity.TransitionOutcomeAborted
	}
}

// ledgerDecided indica que el ledger rechazó el lote: con el mismo token, nada quedó aplicado.
func ledgerDecided(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrProductNotFound) ||
		errors.Is(err, domain.ErrInvalidInput)
}

// callLedger hace un único intento con timeout acotado; no reintenta.
func (o *Orchestrator) callLedger(ctx context.Context, opID string, adjustments []entity.StockAdjustment) error {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return o.ledger.AdjustBatch(callCtx, opID, adjustments)
}

// record escribe la entrada del log de la saga. Un fallo aquí no altera el resultado.
func (o *Orchestrator) record(ctx context.Context, inv *entity.Invoice, d invoice.Decision, opID, outcome string, cause error) {
	entry := &entity.InvoiceTransition{
		ID:          uuid.New().String(),
		InvoiceID:   inv.ID,
		Version:     inv.Version,
		Action:      string(d.Action),
		FromStatus:  d.From,
		ToStatus:    d.To,
		OperationID: opID,
		Outcome:     outcome,
		CreatedAt:   o.now(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		entry.TraceID = sc.TraceID().String()
	}
	if err := o.transitions.Create(context.WithoutCancel(ctx), entry); err != nil {
		o.log.Error().Err(err).Str("invoice_id", inv.ID).Str("outcome", outcome).Msg("no se pudo registrar la transición")
	}
}
