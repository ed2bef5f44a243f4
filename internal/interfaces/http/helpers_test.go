package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/internal/application/billing"
	"github.com/jhoicas/estoque-faturamento/internal/application/inventory"
	"github.com/jhoicas/estoque-faturamento/internal/application/usecase"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/pdf"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/stockclient"
	httpapi "github.com/jhoicas/estoque-faturamento/internal/interfaces/http"
	"github.com/jhoicas/estoque-faturamento/pkg/config"
	"github.com/jhoicas/estoque-faturamento/pkg/idempotency"
)

func newStockApp() *fiber.App {
	log := zerolog.Nop()
	store := memory.NewLedgerStore()
	app := httpapi.NewServer(httpapi.ServerConfig{Name: config.ServiceStock}, log)
	httpapi.StockRouter(app, httpapi.StockRouterDeps{
		ProductUC:   usecase.NewProductUseCase(store.Products(), store.Movements()),
		Ledger:      inventory.NewAdjustUseCase(store, log),
		Idempotency: idempotency.NewMemoryStore(time.Hour),
		Log:         log,
	})
	return app
}

// serve arranca la app en un puerto efímero y devuelve su URL base.
func serve(t *testing.T, app *fiber.App) (string, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	stop := func() { _ = app.Shutdown() }
	t.Cleanup(stop)
	return "http://" + ln.Addr().String(), stop
}

func newInvoiceApp(stockURL string, timeout time.Duration) *fiber.App {
	log := zerolog.Nop()
	invoices := memory.NewInvoiceStore()
	transitions := memory.NewTransitionStore()
	locker := billing.NewKeyedLocker()
	app := httpapi.NewServer(httpapi.ServerConfig{Name: config.ServiceInvoice}, log)
	httpapi.InvoiceRouter(app, httpapi.InvoiceRouterDeps{
		InvoiceUC:    billing.NewInvoiceUseCase(invoices, transitions, locker, log),
		Orchestrator: billing.NewOrchestrator(invoices, transitions, stockclient.New(stockURL, timeout, log), locker, timeout, log),
		InvoicePDF:   billing.NewPDFUseCase(invoices, pdf.NewMarotoPDFGenerator("Estoque & Faturamento")),
		Idempotency:  idempotency.NewMemoryStore(time.Hour),
		Log:          log,
	})
	return app
}

type response struct {
	Status int
	Header map[string]string
	Body   []byte
}

func (r response) decode(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, out), string(r.Body))
}

func call(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	h := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		h[k] = resp.Header.Get(k)
	}
	return response{Status: resp.StatusCode, Header: h, Body: raw}
}
