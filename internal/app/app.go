package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	pgxv5 "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	manager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"fair-draw-service/internal/config"
	"fair-draw-service/internal/http/router"
	"fair-draw-service/internal/infrastructure/nower"
	"fair-draw-service/internal/infrastructure/randomizer"
	"fair-draw-service/internal/repository"
	"fair-draw-service/internal/service"
)

// Паузы между попытками подключения к БД.
var connectBackoff = []time.Duration{0, time.Second, 2 * time.Second, 5 * time.Second}

// App отвечает за жизненный цикл сервиса.
type App struct {
	cfg    config.Config
	server *http.Server
	repo   *repository.Storage
}

// New применяет миграции, подключается к БД и восстанавливает состояние классов.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := runMigrations(cfg.Database); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	pool, err := connectWithRetry(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool, nower.New())
	svc := service.New(
		repo,
		cfg,
		manager.Must(pgxv5.NewDefaultFactory(pool)),
		randomizer.New(cfg.Scheduler.ShuffleSeed),
	)
	// Классы и пулы восстанавливаются до того, как сервер начнёт принимать запросы
	if err := svc.Restore(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("restore classes: %w", err)
	}

	return &App{
		cfg:    cfg,
		repo:   repo,
		server: newServer(cfg, router.New(svc, loadSpec(cfg.Swagger.SpecPath)).Router()),
	}, nil
}

func newServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
}

// loadSpec читает OpenAPI-описание; без него Swagger UI работает, но пустой.
func loadSpec(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to load swagger spec", "path", path, "error", err)
		return nil
	}
	return data
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер и закрывает пул.
func (a *App) Run(ctx context.Context) error {
	defer a.repo.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", a.server.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", a.cfg.Timeouts.Shutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeouts.Shutdown)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runMigrations(cfg config.DatabaseConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.URL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections > 0 {
		poolCfg.MinConns = cfg.MinConnections
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	return poolCfg, nil
}

// connectWithRetry создаёт пул и проверяет соединение ping-ом, повторяя по connectBackoff.
func connectWithRetry(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt, delay := range connectBackoff {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		slog.Warn("failed to connect to database, retrying", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("connect db: %w", lastErr)
}
