package entity

import "time"

// StockOperation registro de un token de operación ya aplicado (deduplicación de reintentos).
// Fingerprint resume el contenido del lote para detectar reutilización del token con otro payload.
type StockOperation struct {
	ID          string
	Fingerprint string
	CreatedAt   time.Time
}
