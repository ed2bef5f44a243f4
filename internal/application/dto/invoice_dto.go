package dto

import "time"

// InvoiceItemRequest línea de factura en la entrada.
type InvoiceItemRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// CreateInvoiceRequest entrada para crear una factura (queda OPEN).
type CreateInvoiceRequest struct {
	Items []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateInvoiceRequest reemplaza el conjunto completo de líneas de una factura OPEN.
type UpdateInvoiceRequest struct {
	Items []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemResponse línea de factura en la salida.
type InvoiceItemResponse struct {
	ProductID   string `json:"product_id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// InvoiceResponse salida de una factura.
type InvoiceResponse struct {
	ID        string                `json:"id"`
	Number    int64                 `json:"number"`
	Status    string                `json:"status"`
	Version   int                   `json:"version"`
	Items     []InvoiceItemResponse `json:"items"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// TransitionResponse entrada del log de la saga.
type TransitionResponse struct {
	ID          string    `json:"id"`
	Version     int       `json:"version"`
	Action      string    `json:"action"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	OperationID string    `json:"operation_id,omitempty"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	TraceID     string    `json:"trace_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
