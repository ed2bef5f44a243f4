package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvoiceNotFound         = fmt.Errorf("factura: %w", ErrNotFound)
	ErrProductNotFound         = fmt.Errorf("producto: %w", ErrNotFound)
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrConflict                = errors.New("conflicto con el estado actual")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInvalidTransition       = errors.New("transición de estado inválida")
	ErrStockServiceUnavailable = errors.New("servicio de stock no disponible")
	ErrIdempotencyMismatch     = fmt.Errorf("operación repetida con contenido distinto: %w", ErrConflict)
	ErrInvariantViolation      = errors.New("violación de invariante")
)

// InsufficientStockError detalla el rechazo de un débito que dejaría el saldo negativo.
type InsufficientStockError struct {
	ProductID   string
	Description string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("saldo insuficiente para el producto '%s' (%s): disponible %d, solicitado %d",
		e.Description, e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ProductNotFoundError producto desconocido por el ledger (incluye referencias colgantes de facturas).
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InvalidTransitionError el estado actual de la factura no permite la acción pedida.
type InvalidTransitionError struct {
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no se puede aplicar '%s' a una factura con estado %s", e.Requested, e.Current)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// StockUnavailableError falla de transporte hablando con el servicio de stock.
// Unknown indica que la petición pudo haber llegado: el resultado remoto es desconocido.
type StockUnavailableError struct {
	Op      string
	Unknown bool
	Err     error
}

func (e *StockUnavailableError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("%s: resultado desconocido en el servicio de stock: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: servicio de stock no disponible: %v", e.Op, e.Err)
}

func (e *StockUnavailableError) Unwrap() []error {
	return []error{ErrStockServiceUnavailable, e.Err}
}

// PendingOperationError hay una transición con resultado desconocido que debe reintentarse primero.
type PendingOperationError struct {
	InvoiceID   string
	Action      string
	OperationID string
}

func (e *PendingOperationError) Error() string {
	return fmt.Sprintf("la factura %s tiene pendiente '%s' (operación %s); reintente esa acción primero",
		e.InvoiceID, e.Action, e.OperationID)
}

func (e *PendingOperationError) Unwrap() error { return ErrConflict }
