// Package idempotency guarda respuestas HTTP por clave Idempotency-Key para reproducirlas en reintentos.
package idempotency

import (
	"context"
	"errors"

	"github.com/jhoicas/estoque-faturamento/pkg/config"
)

// ErrInFlight otra petición con la misma clave todavía no terminó.
var ErrInFlight = errors.New("idempotency: petición en curso con la misma clave")

// Response respuesta almacenada de una petición ya procesada.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store reserva claves y guarda sus respuestas.
//
// Reserve devuelve (nil, nil) si la clave quedó reservada para quien llama,
// la respuesta guardada si ya existe, o ErrInFlight si sigue reservada por otro.
type Store interface {
	Reserve(ctx context.Context, key string) (*Response, error)
	Save(ctx context.Context, key string, resp Response) error
	Release(ctx context.Context, key string) error
}

// NewStore elige el almacén según la configuración: Redis si hay URL, memoria local si no.
// closeFn libera la conexión a Redis.
func NewStore(ctx context.Context, cfg config.RedisConfig) (store Store, closeFn func() error, err error) {
	if cfg.URL == "" {
		return NewMemoryStore(cfg.KeyTTL), func() error { return nil }, nil
	}
	rdb, err := NewRedisClient(ctx, cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	return NewRedisStore(rdb, cfg.KeyPrefix, cfg.KeyTTL), rdb.Close, nil
}
