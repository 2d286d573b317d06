// Command example serves a small notes application on top of dispatch.
//
// Notes live in Postgres when DATABASE_URL is set and in memory otherwise.
// SESSION_STORE=redis keeps sessions in Redis (REDIS_URL).
package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/dmitrymomot/dispatch"
	"github.com/dmitrymomot/dispatch/example/notes"
	"github.com/dmitrymomot/dispatch/middlewares"
	"github.com/dmitrymomot/dispatch/pkg/config"
	"github.com/dmitrymomot/dispatch/pkg/db"
	"github.com/dmitrymomot/dispatch/pkg/event"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/redis"
	"github.com/dmitrymomot/dispatch/pkg/sanitizer"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	var cfg Config
	config.MustLoad(&cfg, config.WithFile(os.Getenv("CONFIG_FILE")), config.WithDotenv(".env"))

	log := logger.NewFromConfig(cfg.Log, dispatch.RequestIDExtractor)
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	var (
		repo   notes.Repository = notes.NewMemoryRepository()
		store  session.Store    = session.NewMemoryStore()
		health []dispatch.HealthOption
		hooks  []dispatch.RunOption
	)

	if cfg.Database.URL != "" {
		pool, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx, pool, migrations, "migrations", cfg.Database.MigrationsTable, log); err != nil {
			pool.Close()
			return err
		}
		repo = notes.NewPostgresRepository(pool)
		health = append(health, dispatch.WithReadinessCheck("postgres", db.Healthcheck(pool)))
		hooks = append(hooks, dispatch.ShutdownHook(db.Shutdown(pool)))
	}

	if cfg.Session.Store == "redis" {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		store = session.NewRedisStore(client)
		health = append(health, dispatch.WithReadinessCheck("redis", redis.Healthcheck(client)))
		hooks = append(hooks, dispatch.ShutdownHook(redis.Shutdown(client)))
	}

	publisher := event.New()
	audit := event.NewListener(func(ctx context.Context, e *event.Event, _ *event.Publisher) error {
		log.InfoContext(ctx, "note changed", slog.String("event", e.Name()))
		return nil
	})
	for _, name := range []string{"note.after.add", "note.after.edit", "note.after.delete"} {
		if err := publisher.AddListener(name, audit, event.PriorityNormal); err != nil {
			return err
		}
	}

	san := sanitizer.New()
	app := dispatch.New(
		dispatch.WithLogger(log),
		dispatch.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(middlewares.WithRecoverLogger(log)),
			middlewares.CORS(middlewares.WithCORSOrigins(cfg.CORSOrigins...), middlewares.WithCORSCredentials()),
			middlewares.AccessLog(log),
			middlewares.Timeout(cfg.RequestTimeout, log),
		),
		dispatch.WithSession(store, cfg.Session.Options()...),
		dispatch.WithPublisher(publisher),
		dispatch.WithHealthChecks(health...),
		dispatch.WithControllers(map[string]dispatch.ControllerFactory{
			"notes":    notes.Factory(repo, san, log, dispatch.WithControllerPublisher(publisher)),
			"accounts": notes.NewAccount,
		}),
		dispatch.WithDispatcher(cfg.Root, append([]dispatch.DispatcherOption{
			dispatch.WithDefaultController("notes"),
			dispatch.WithSanitizer(san),
		}, cfg.Dispatcher.Options()...)...),
	)

	opts := append([]dispatch.RunOption{
		dispatch.Logger(log),
		dispatch.WithContext(ctx),
		dispatch.ShutdownTimeout(cfg.ShutdownTimeout),
	}, hooks...)
	return app.Run(cfg.Addr, opts...)
}
