// Package stockclient es el adaptador HTTP del puerto billing.StockLedger contra stock-api.
package stockclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jhoicas/estoque-faturamento/internal/application/billing"
	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
)

var _ billing.StockLedger = (*Client)(nil)

// Rutas del ledger para lotes.
const (
	PathDebitBatch  = "/stock/adjust-batch"
	PathCreditBatch = "/stock/credit-batch"
)

// Client cliente del servicio de stock. Cada llamada es un único intento; no reintenta.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New construye el cliente. El transporte propaga el contexto de traza (W3C traceparent).
// timeout acota la petición completa además del deadline del contexto.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log.With().Str("component", "stock-client").Logger(),
	}
}

// AdjustBatch envía el lote al endpoint de débito o de crédito según el signo de los deltas.
// Un lote no puede mezclar signos.
func (c *Client) AdjustBatch(ctx context.Context, operationID string, adjustments []entity.StockAdjustment) error {
	path, items, err := toBatch(adjustments)
	if err != nil {
		return err
	}
	body, err := json.Marshal(dto.BatchRequest{OperationID: operationID, Items: items})
	if err != nil {
		return fmt.Errorf("stock: serializar lote: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("stock: construir petición: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		sue := classifyTransportError(path, err)
		c.log.Warn().Err(err).Str("operation_id", operationID).Bool("unknown", sue.Unknown).
			Dur("elapsed", time.Since(start)).Msg("fallo de transporte con el servicio de stock")
		return sue
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		// La petición llegó y el servidor respondió: el resultado remoto es desconocido
		return &domain.StockUnavailableError{Op: path, Unknown: true, Err: fmt.Errorf("leer respuesta: %w", err)}
	}

	c.log.Debug().Str("operation_id", operationID).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("respuesta del servicio de stock")
	return decodeResponse(path, resp.StatusCode, respBody)
}

func toBatch(adjustments []entity.StockAdjustment) (string, []dto.BatchItem, error) {
	if len(adjustments) == 0 {
		return "", nil, fmt.Errorf("%w: lote vacío", domain.ErrInvalidInput)
	}
	path := ""
	items := make([]dto.BatchItem, 0, len(adjustments))
	for _, a := range adjustments {
		var p string
		switch {
		case a.Delta < 0:
			p = PathDebitBatch
		case a.Delta > 0:
			p = PathCreditBatch
		default:
			return "", nil, fmt.Errorf("%w: delta cero para %s", domain.ErrInvalidInput, a.ProductID)
		}
		if path != "" && p != path {
			return "", nil, fmt.Errorf("%w: el lote mezcla débitos y créditos", domain.ErrInvalidInput)
		}
		path = p
		qty := a.Delta
		if qty < 0 {
			qty = -qty
		}
		items = append(items, dto.BatchItem{ProductID: a.ProductID, Quantity: qty})
	}
	return path, items, nil
}

// classifyTransportError distingue "no llegó" (dial/DNS) de "pudo haber llegado"
// (timeout, conexión cortada tras enviar).
func classifyTransportError(op string, err error) *domain.StockUnavailableError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &domain.StockUnavailableError{Op: op, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &domain.StockUnavailableError{Op: op, Err: err}
	}
	return &domain.StockUnavailableError{Op: op, Unknown: true, Err: err}
}

type errorBody struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	ProductID   string `json:"product_id"`
	Description string `json:"description"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

func decodeResponse(op string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if status >= 500 {
		return &domain.StockUnavailableError{Op: op, Unknown: true, Err: fmt.Errorf("status %d: %s", status, truncate(body))}
	}

	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	switch {
	case eb.Code == dto.CodeInsufficientStock:
		return &domain.InsufficientStockError{
			ProductID:   eb.ProductID,
			Description: eb.Description,
			Available:   eb.Available,
			Requested:   eb.Requested,
		}
	case status == http.StatusNotFound:
		return &domain.ProductNotFoundError{ProductID: eb.ProductID}
	case eb.Code == dto.CodeIdempotencyMismatch:
		return domain.ErrIdempotencyMismatch
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, eb.Message)
	default:
		return fmt.Errorf("stock: respuesta inesperada %d: %s", status, truncate(body))
	}
}

func truncate(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}
