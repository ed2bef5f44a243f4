package entity

import "time"

// InvoiceStatus estado de la factura.
type InvoiceStatus string

// Estados de la factura. CANCELLED es terminal.
const (
	InvoiceStatusOpen      InvoiceStatus = "OPEN"
	InvoiceStatusClosed    InvoiceStatus = "CLOSED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Invoice cabecera de la factura con sus líneas en orden.
// Version se incrementa en cada edición o cambio de estado (control optimista).
type Invoice struct {
	ID        string
	Number    int64
	Status    InvoiceStatus
	Version   int
	Items     []InvoiceItem
	CreatedAt time.Time
	UpdatedAt time.Time
}
