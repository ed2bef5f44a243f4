package entity

import "math"

// MaxQuantity cota de cantidades y saldos: las columnas del ledger y de las líneas son INTEGER.
const MaxQuantity = math.MaxInt32

// StockAdjustment una línea de un lote de ajuste: delta con signo (débito < 0, crédito > 0).
type StockAdjustment struct {
	ProductID string
	Delta     int
}
