package stockclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/internal/application/dto"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/stockclient"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newClient(url string) *stockclient.Client {
	return stockclient.New(url, 2*time.Second, zerolog.Nop())
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var debit = []entity.StockAdjustment{{ProductID: "p1", Delta: -4}, {ProductID: "p2", Delta: -1}}

// ──────────────────────────────────────────────────────────────────────────────
// Éxito y enrutamiento por signo
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_DebitoUsaAdjustBatch(t *testing.T) {
	var got dto.BatchRequest
	var path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondJSON(w, http.StatusOK, dto.BatchResponse{OperationID: got.OperationID})
	}))
	defer srv.Close()

	err := newClient(srv.URL).AdjustBatch(context.Background(), "f1:print:v0", debit)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, stockclient.PathDebitBatch, path)
	assert.Equal(t, "f1:print:v0", got.OperationID)
	assert.Equal(t, []dto.BatchItem{{ProductID: "p1", Quantity: 4}, {ProductID: "p2", Quantity: 1}}, got.Items)
}

func TestClient_CreditoUsaCreditBatch(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		respondJSON(w, http.StatusOK, dto.BatchResponse{})
	}))
	defer srv.Close()

	err := newClient(srv.URL+"/").AdjustBatch(context.Background(), "op", []entity.StockAdjustment{{ProductID: "p1", Delta: 3}})
	require.NoError(t, err)
	assert.Equal(t, stockclient.PathCreditBatch, path)
}

func TestClient_LoteInvalidoNoSaleDelProceso(t *testing.T) {
	c := newClient("http://127.0.0.1:1")
	err := c.AdjustBatch(context.Background(), "op", []entity.StockAdjustment{{ProductID: "p1", Delta: -1}, {ProductID: "p2", Delta: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = c.AdjustBatch(context.Background(), "op", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de negocio del ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_MapeaErroresDelLedger(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "saldo insuficiente",
			status: http.StatusBadRequest,
			body: dto.InsufficientStockResponse{
				ErrorResponse: dto.ErrorResponse{Code: dto.CodeInsufficientStock, Message: "x"},
				ProductID:     "p1", Description: "Tornillo", Available: 3, Requested: 4,
			},
			check: func(t *testing.T, err error) {
				var ise *domain.InsufficientStockError
				require.ErrorAs(t, err, &ise)
				assert.Equal(t, "p1", ise.ProductID)
				assert.Equal(t, "Tornillo", ise.Description)
				assert.Equal(t, 3, ise.Available)
				assert.Equal(t, 4, ise.Requested)
			},
		},
		{
			name:   "producto inexistente",
			status: http.StatusNotFound,
			body:   dto.ProductNotFoundResponse{ErrorResponse: dto.ErrorResponse{Code: dto.CodeProductNotFound}, ProductID: "p2"},
			check: func(t *testing.T, err error) {
				var pnf *domain.ProductNotFoundError
				require.ErrorAs(t, err, &pnf)
				assert.Equal(t, "p2", pnf.ProductID)
			},
		},
		{
			name:   "token con otro contenido",
			status: http.StatusConflict,
			body:   dto.ErrorResponse{Code: dto.CodeIdempotencyMismatch},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrIdempotencyMismatch)
			},
		},
		{
			name:   "error interno: resultado desconocido",
			status: http.StatusInternalServerError,
			body:   dto.ErrorResponse{Code: dto.CodeInternal},
			check: func(t *testing.T, err error) {
				var sue *domain.StockUnavailableError
				require.ErrorAs(t, err, &sue)
				assert.True(t, sue.Unknown)
				assert.ErrorIs(t, err, domain.ErrStockServiceUnavailable)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, tc.status, tc.body)
			}))
			defer srv.Close()
			tc.check(t, newClient(srv.URL).AdjustBatch(context.Background(), "op", debit))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos de transporte
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_ServidorCaidoNoEsAmbiguo(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := newClient(url).AdjustBatch(context.Background(), "op", debit)
	var sue *domain.StockUnavailableError
	require.ErrorAs(t, err, &sue)
	assert.False(t, sue.Unknown, "si no se pudo conectar, la petición nunca llegó")
}

func TestClient_TimeoutEsAmbiguo(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := newClient(srv.URL).AdjustBatch(ctx, "op", debit)
	var sue *domain.StockUnavailableError
	require.ErrorAs(t, err, &sue)
	assert.True(t, sue.Unknown)
}

func TestClient_ConexionCortadaTrasEnviarEsAmbigua(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srv.Close()

	err := newClient(srv.URL).AdjustBatch(context.Background(), "op", debit)
	var sue *domain.StockUnavailableError
	require.ErrorAs(t, err, &sue)
	assert.True(t, sue.Unknown)
}
