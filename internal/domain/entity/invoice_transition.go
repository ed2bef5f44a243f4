package entity

import "time"

// Resultado de una transición registrada en el log de la saga.
const (
	TransitionOutcomeCompleted    = "COMPLETED"
	TransitionOutcomeAborted      = "ABORTED"      // nada se aplicó
	TransitionOutcomeUnknown      = "UNKNOWN"      // el stock pudo haberse aplicado
	TransitionOutcomeInconsistent = "INCONSISTENT" // stock aplicado, estado no persistido
)

// InvoiceTransition entrada del log de la saga de una factura.
type InvoiceTransition struct {
	ID          string
	InvoiceID   string
	Version     int // versión de la factura al momento del intento
	Action      string
	FromStatus  InvoiceStatus
	ToStatus    InvoiceStatus
	OperationID string
	Outcome     string
	Error       string
	TraceID     string
	CreatedAt   time.Time
}
