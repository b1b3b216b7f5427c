// The lendingserverd command runs the library lending HTTP service.
//
// It loads its configuration from the environment, applies the embedded schema
// migrations, connects to PostgreSQL and serves the lending API until it
// receives SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/libtrack/library-lending-go/config"
	"github.com/libtrack/library-lending-go/httpapi"
	"github.com/libtrack/library-lending-go/inventory/oteladapters"
	"github.com/libtrack/library-lending-go/inventory/postgresengine"
	"github.com/libtrack/library-lending-go/migrations"
)

const serviceName = "library-lending-service"

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := applyMigrations(cfg); err != nil {
		slog.Error("applying migrations failed", "error", err)
		os.Exit(1)
	}

	pool, err := newPGXPool(ctx, cfg)
	if err != nil {
		slog.Error("connecting to postgres failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	storeOptions, handlerOptions := buildObservabilityOptions(cfg)

	bookStore, err := postgresengine.NewBookStoreFromPGXPool(pool, storeOptions...)
	if err != nil {
		slog.Error("creating book store failed", "error", err)
		os.Exit(1)
	}

	sessions := httpapi.NewStaticSessionValidator()
	if cfg.LibrarianToken != "" {
		sessions.Register(cfg.LibrarianToken, httpapi.Session{UserID: uuid.New(), Role: httpapi.RoleLibrarian})
	}
	if cfg.MemberToken != "" {
		sessions.Register(cfg.MemberToken, httpapi.Session{UserID: uuid.New(), Role: httpapi.RoleMember})
	}

	handler := httpapi.NewHandler(bookStore, sessions, handlerOptions...)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("lending service listening", "addr", cfg.HTTPAddr)
		serverErrors <- server.ListenAndServe()
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}

	case sig := <-interrupt:
		slog.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err = server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			_ = server.Close()
		}
	}

	slog.Info("lending service stopped")
}

// buildObservabilityOptions assembles the book store and HTTP handler options.
// With observability enabled, the OpenTelemetry adapters are wired in on top of
// the globally registered meter, tracer and logger providers; otherwise the
// store falls back to plain slog logging.
func buildObservabilityOptions(cfg *config.Config) ([]postgresengine.Option, []httpapi.Option) {
	if !cfg.ObservabilityEnabled {
		return []postgresengine.Option{postgresengine.WithLogger(slog.Default())}, nil
	}

	metricsCollector := oteladapters.NewMetricsCollector(otel.Meter(serviceName))
	tracingCollector := oteladapters.NewTracingCollector(otel.Tracer(serviceName))
	contextualLogger := oteladapters.NewSlogBridgeLogger(serviceName)

	storeOptions := []postgresengine.Option{
		postgresengine.WithContextualLogger(contextualLogger),
		postgresengine.WithMetrics(metricsCollector),
		postgresengine.WithTracing(tracingCollector),
	}

	handlerOptions := []httpapi.Option{
		httpapi.WithMetrics(metricsCollector),
	}

	return storeOptions, handlerOptions
}

func applyMigrations(cfg *config.Config) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, "pgx5://"+trimScheme(cfg.Postgres.DSN()))
	if err != nil {
		return err
	}
	defer func() { _, _ = migrator.Close() }()

	if err = migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// trimScheme strips the postgres:// prefix so the DSN can be re-prefixed with
// the migrate driver's pgx5 scheme.
func trimScheme(dsn string) string {
	const scheme = "postgres://"
	if len(dsn) > len(scheme) && dsn[:len(scheme)] == scheme {
		return dsn[len(scheme):]
	}

	return dsn
}

func newPGXPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := cfg.Postgres.PGXPoolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return pool, nil
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
