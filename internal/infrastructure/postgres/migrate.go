package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

//go:embed migrations
var migrationsFS embed.FS

// Conjuntos de migraciones, uno por base de datos.
const (
	MigrationsStock   = "stock"
	MigrationsInvoice = "invoice"
)

// Migrate aplica, en orden y una sola vez, los .sql del conjunto indicado.
// Un advisory lock transaccional evita que dos instancias migren a la vez.
func Migrate(ctx context.Context, db DB, set string, log zerolog.Logger) error {
	dir := path.Join("migrations", set)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("migraciones %s: %w", set, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	return inTx(ctx, db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('schema_migrations'))`); err != nil {
			return fmt.Errorf("advisory lock: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version    TEXT PRIMARY KEY,
				applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`); err != nil {
			return fmt.Errorf("crear schema_migrations: %w", err)
		}
		for _, name := range names {
			version := set + "/" + name
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists); err != nil {
				return fmt.Errorf("consultar migración %s: %w", version, err)
			}
			if exists {
				continue
			}
			sqlBytes, err := migrationsFS.ReadFile(path.Join(dir, name))
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
				return fmt.Errorf("aplicar migración %s: %w", version, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return fmt.Errorf("registrar migración %s: %w", version, err)
			}
			log.Info().Str("version", version).Msg("migración aplicada")
		}
		return nil
	})
}
