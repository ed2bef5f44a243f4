package dto

import "time"

// QuantityRequest entrada de débito/crédito manual sobre un producto.
type QuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// BatchItem línea de un lote: cantidad siempre positiva, el endpoint define el signo.
type BatchItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// BatchRequest cuerpo de PUT /stock/adjust-batch y PUT /stock/credit-batch.
type BatchRequest struct {
	OperationID string      `json:"operation_id,omitempty"`
	Items       []BatchItem `json:"items"`
}

// BatchResponse resultado de un lote aplicado (o repetido).
type BatchResponse struct {
	OperationID string            `json:"operation_id,omitempty"`
	Replayed    bool              `json:"replayed"`
	Products    []ProductResponse `json:"products"`
}

// InsufficientStockResponse 400 con el detalle del producto que no alcanza.
type InsufficientStockResponse struct {
	ErrorResponse
	ProductID   string `json:"product_id"`
	Description string `json:"description"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

// ProductNotFoundResponse 404 con el producto desconocido.
type ProductNotFoundResponse struct {
	ErrorResponse
	ProductID string `json:"product_id"`
}

// MovementResponse línea del diario del ledger.
type MovementResponse struct {
	ID           string    `json:"id"`
	OperationID  string    `json:"operation_id,omitempty"`
	ProductID    string    `json:"product_id"`
	Kind         string    `json:"kind"`
	Source       string    `json:"source"`
	Delta        int       `json:"delta"`
	BalanceAfter int       `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
