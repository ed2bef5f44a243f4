package idempotency_test

import (
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-faturamento/pkg/idempotency"
)

func newApp(status *int32, calls *int32) *fiber.App {
	app := fiber.New()
	app.Use(idempotency.Middleware(idempotency.NewMemoryStore(time.Hour), zerolog.Nop()))
	app.Post("/invoices/:id/print", func(c *fiber.Ctx) error {
		n := atomic.AddInt32(calls, 1)
		return c.Status(int(atomic.LoadInt32(status))).JSON(fiber.Map{"call": n})
	})
	app.Get("/invoices/:id", func(c *fiber.Ctx) error {
		atomic.AddInt32(calls, 1)
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, key string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(idempotency.HeaderKey, key)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header.Get(idempotency.HeaderReplayed)
}

func TestMiddleware_ReproduceRespuesta(t *testing.T) {
	status, calls := int32(200), int32(0)
	app := newApp(&status, &calls)

	code, body, replayed := do(t, app, "POST", "/invoices/a/print", "k1")
	assert.Equal(t, 200, code)
	assert.Empty(t, replayed)

	code2, body2, replayed2 := do(t, app, "POST", "/invoices/a/print", "k1")
	assert.Equal(t, 200, code2)
	assert.Equal(t, body, body2)
	assert.Equal(t, "true", replayed2)
	assert.Equal(t, int32(1), calls)

	// Misma clave en otra ruta es otra operación
	_, _, replayed3 := do(t, app, "POST", "/invoices/b/print", "k1")
	assert.Empty(t, replayed3)
	assert.Equal(t, int32(2), calls)
}

func TestMiddleware_5xxLiberaLaClave(t *testing.T) {
	status, calls := int32(503), int32(0)
	app := newApp(&status, &calls)

	code, _, _ := do(t, app, "POST", "/invoices/a/print", "k1")
	assert.Equal(t, 503, code)

	atomic.StoreInt32(&status, 200)
	code, _, replayed := do(t, app, "POST", "/invoices/a/print", "k1")
	assert.Equal(t, 200, code)
	assert.Empty(t, replayed)
	assert.Equal(t, int32(2), calls)
}

func TestMiddleware_4xxSeGuarda(t *testing.T) {
	status, calls := int32(400), int32(0)
	app := newApp(&status, &calls)

	do(t, app, "POST", "/invoices/a/print", "k1")
	atomic.StoreInt32(&status, 200)
	code, _, replayed := do(t, app, "POST", "/invoices/a/print", "k1")
	assert.Equal(t, 400, code)
	assert.Equal(t, "true", replayed)
	assert.Equal(t, int32(1), calls)
}

func TestMiddleware_SinClaveOLectura(t *testing.T) {
	status, calls := int32(200), int32(0)
	app := newApp(&status, &calls)

	do(t, app, "POST", "/invoices/a/print", "")
	do(t, app, "POST", "/invoices/a/print", "")
	do(t, app, "GET", "/invoices/a", "k1")
	_, _, replayed := do(t, app, "GET", "/invoices/a", "k1")
	assert.Empty(t, replayed)
	assert.Equal(t, int32(4), calls)
}
