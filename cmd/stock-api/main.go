// stock-api: ledger de productos y saldos.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/estoque-faturamento/internal/application/inventory"
	"github.com/jhoicas/estoque-faturamento/internal/application/usecase"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-faturamento/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/estoque-faturamento/internal/interfaces/http"
	"github.com/jhoicas/estoque-faturamento/pkg/config"
	"github.com/jhoicas/estoque-faturamento/pkg/idempotency"
	"github.com/jhoicas/estoque-faturamento/pkg/logger"
	"github.com/jhoicas/estoque-faturamento/pkg/tracing"
)

func main() {
	cfg, err := config.Load(config.ServiceStock)
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
		Msg("iniciando stock-api")

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	var (
		txRunner  inventory.TxRunner
		products  repository.ProductRepository
		movements repository.StockMovementRepository
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewLedgerStore()
		txRunner, products, movements = store, store.Products(), store.Movements()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, postgres.MigrationsStock, zl); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		txRunner = postgres.NewTxRunner(pool)
		products = postgres.NewProductRepository(pool)
		movements = postgres.NewStockMovementRepository(pool)
	}

	idem, closeIdem, err := idempotency.NewStore(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer func() { _ = closeIdem() }()

	app := httpRouter.NewServer(httpRouter.ServerConfig{Name: cfg.App.Name, HTTP: cfg.HTTP, Docs: cfg.Docs}, zl)
	httpRouter.StockRouter(app, httpRouter.StockRouterDeps{
		ProductUC:   usecase.NewProductUseCase(products, movements),
		Ledger:      inventory.NewAdjustUseCase(txRunner, zl),
		Idempotency: idem,
		Log:         zl,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}

	log.Info().Msg("stock-api detenido")
}
