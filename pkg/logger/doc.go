// Package logger builds the slog loggers used across the dispatch stack.
//
// Records are enriched from the context in two ways. WithAttrs stores
// attributes on a context; the dispatcher uses it to tag everything logged
// during an action with the controller and action name:
//
//	ctx = logger.WithAttrs(ctx, logger.Controller("note"), logger.Action("edit"))
//	log.InfoContext(ctx, "action executed", logger.Status(200))
//
// ContextExtractors compute an attribute per record. dispatch.RequestIDExtractor
// adds the id set by middlewares.RequestID:
//
//	log := logger.New(dispatch.RequestIDExtractor)
//
// # Configuration
//
// NewFromConfig reads level and format (json or text) from a Config, which
// pkg/config fills from LOG_LEVEL, LOG_FORMAT and SENTRY_*:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.NewFromConfig(cfg, dispatch.RequestIDExtractor)
//
// # Sentry
//
// With a DSN every record goes to stdout and to Sentry: errors open issues,
// warnings are kept as breadcrumbs. Without one, or when Sentry fails to
// initialise, only stdout is used, so the same wiring runs everywhere.
package logger
