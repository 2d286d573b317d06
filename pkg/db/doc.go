// Package db opens PostgreSQL pools with pgx and applies goose migrations.
//
//	pool, err := db.Open(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations, "migrations", cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// [Healthcheck] plugs into pkg/health, [Shutdown] into the run shutdown
// hooks and [WithTx] wraps a unit of work in a transaction.
package db
