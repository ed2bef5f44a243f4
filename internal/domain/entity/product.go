package entity

import "time"

// Product representa un producto del ledger de stock.
// Balance nunca es negativo; solo el caso de uso de ajustes lo modifica.
type Product struct {
	ID          string
	Code        string // código de exhibición
	Description string
	Balance     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
