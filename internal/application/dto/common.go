package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero y acota Limit a 100.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Códigos de error expuestos por ambos servicios.
const (
	CodeInvalidInput            = "INVALID_INPUT"
	CodeNotFound                = "NOT_FOUND"
	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
	CodeInvoiceNotFound         = "INVOICE_NOT_FOUND"
	CodeDuplicate               = "DUPLICATE"
	CodeConflict                = "CONFLICT"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeIdempotencyMismatch     = "IDEMPOTENCY_MISMATCH"
	CodePendingOperation        = "PENDING_OPERATION"
	CodeStockServiceUnavailable = "STOCK_SERVICE_UNAVAILABLE"
	CodeStockOutcomeUnknown     = "STOCK_OUTCOME_UNKNOWN"
	CodeInternal                = "INTERNAL"
)
