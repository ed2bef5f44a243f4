package entity

import "time"

// Tipos de movimiento del ledger.
const (
	MovementKindDebit  = "DEBIT"  // salida
	MovementKindCredit = "CREDIT" // entrada
)

// Origen del movimiento.
const (
	MovementSourceBatch  = "BATCH"  // lote enviado por facturación
	MovementSourceManual = "MANUAL" // ajuste manual de un producto
)

// StockMovement línea del diario del ledger: una por producto afectado en cada ajuste.
type StockMovement struct {
	ID           string
	OperationID  string // token de la operación (vacío en ajustes manuales sin token)
	ProductID    string
	Kind         string
	Source       string
	Delta        int // negativo en débitos
	BalanceAfter int
	CreatedAt    time.Time
}
