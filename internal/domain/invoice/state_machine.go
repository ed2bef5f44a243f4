// Package invoice contiene la máquina de estados de la factura (servicio de dominio puro, sin I/O).
//
//	OPEN ──print──▶ CLOSED ──reopen──▶ OPEN
//	OPEN ──cancel─▶ CANCELLED
//	CLOSED ─cancel─▶ CANCELLED (devuelve stock)
//
// CANCELLED es terminal. Cada decisión indica qué operación de stock debe ejecutar el orquestador.
package invoice

import (
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

// Action acción solicitada sobre una factura.
type Action string

// Acciones soportadas.
const (
	ActionEdit   Action = "edit"
	ActionPrint  Action = "print"
	ActionReopen Action = "reopen"
	ActionCancel Action = "cancel"
)

// StockEffect operación de stock que acompaña a la transición.
type StockEffect int

// Efectos posibles sobre el ledger.
const (
	EffectNone StockEffect = iota
	EffectDebit
	EffectCredit
)

func (e StockEffect) String() string {
	switch e {
	case EffectDebit:
		return "debit"
	case EffectCredit:
		return "credit"
	default:
		return "none"
	}
}

// Decision resultado de evaluar una acción: estado destino y efecto de stock requerido.
type Decision struct {
	Action Action
	From   entity.InvoiceStatus
	To     entity.InvoiceStatus
	Effect StockEffect
}

type transitionKey struct {
	from   entity.InvoiceStatus
	action Action
}

type transitionRule struct {
	to     entity.InvoiceStatus
	effect StockEffect
}

var transitions = map[transitionKey]transitionRule{
	{entity.InvoiceStatusOpen, ActionEdit}:     {entity.InvoiceStatusOpen, EffectNone},
	{entity.InvoiceStatusOpen, ActionPrint}:    {entity.InvoiceStatusClosed, EffectDebit},
	{entity.InvoiceStatusClosed, ActionReopen}: {entity.InvoiceStatusOpen, EffectCredit},
	{entity.InvoiceStatusOpen, ActionCancel}:   {entity.InvoiceStatusCancelled, EffectNone},
	{entity.InvoiceStatusClosed, ActionCancel}: {entity.InvoiceStatusCancelled, EffectCredit},
}

// Decide valida la acción contra el estado actual. Cualquier combinación fuera de la tabla
// (incluido todo lo que parte de CANCELLED) devuelve *domain.InvalidTransitionError.
func Decide(current entity.InvoiceStatus, action Action) (Decision, error) {
	rule, ok := transitions[transitionKey{from: current, action: action}]
	if !ok {
		return Decision{}, &domain.InvalidTransitionError{Current: string(current), Requested: string(action)}
	}
	return Decision{Action: action, From: current, To: rule.to, Effect: rule.effect}, nil
}

// RequiresStock indica si la transición debe pasar por el ledger.
func (d Decision) RequiresStock() bool {
	return d.Effect != EffectNone
}

// Adjustments traduce las líneas de la factura a deltas con signo según el efecto:
// débito = -cantidad, crédito = +cantidad. Sin efecto devuelve nil.
func (d Decision) Adjustments(items []entity.InvoiceItem) []entity.StockAdjustment {
	sign := 0
	switch d.Effect {
	case EffectDebit:
		sign = -1
	case EffectCredit:
		sign = 1
	default:
		return nil
	}
	out := make([]entity.StockAdjustment, 0, len(items))
	for _, it := range items {
		out = append(out, entity.StockAdjustment{ProductID: it.ProductID, Delta: sign * it.Quantity})
	}
	return out
}
