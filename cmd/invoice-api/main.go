// invoice-api: facturas y saga de reserva de stock contra stock-api.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/estoque-faturamento/internal/application/billing"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/estoque-faturamento/internal/infrastructure/pdf"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/stockclient"
	httpRouter "github.com/jhoicas/estoque-faturamento/internal/interfaces/http"
	"github.com/jhoicas/estoque-faturamento/pkg/config"
	"github.com/jhoicas/estoque-faturamento/pkg/idempotency"
	"github.com/jhoicas/estoque-faturamento/pkg/logger"
	"github.com/jhoicas/estoque-faturamento/pkg/tracing"
)

func main() {
	cfg, err := config.Load(config.ServiceInvoice)
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Str("stock_service", cfg.StockService.URL).
		Dur("stock_timeout", cfg.StockService.Timeout).
		Msg("iniciando invoice-api")

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	var (
		invoices    repository.InvoiceRepository
		transitions repository.InvoiceTransitionRepository
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		invoices, transitions = memory.NewInvoiceStore(), memory.NewTransitionStore()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, postgres.MigrationsInvoice, zl); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		invoices = postgres.NewInvoiceRepository(pool)
		transitions = postgres.NewInvoiceTransitionRepository(pool)
	}

	idem, closeIdem, err := idempotency.NewStore(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer func() { _ = closeIdem() }()

	// Un lock por factura compartido por ediciones y transiciones
	locker := billing.NewKeyedLocker()
	ledger := stockclient.New(cfg.StockService.URL, cfg.StockService.Timeout, zl)

	app := httpRouter.NewServer(httpRouter.ServerConfig{Name: cfg.App.Name, HTTP: cfg.HTTP, Docs: cfg.Docs}, zl)
	httpRouter.InvoiceRouter(app, httpRouter.InvoiceRouterDeps{
		InvoiceUC:    billing.NewInvoiceUseCase(invoices, transitions, locker, zl),
		Orchestrator: billing.NewOrchestrator(invoices, transitions, ledger, locker, cfg.StockService.Timeout, zl),
		InvoicePDF:   billing.NewPDFUseCase(invoices, infrapdf.NewMarotoPDFGenerator(cfg.App.Name)),
		Idempotency:  idem,
		Log:          zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("escuchando")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Las transiciones en curso terminan: el cierre espera a que respondan
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.StockService.Timeout+10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}

	log.Info().Msg("invoice-api detenido")
}
