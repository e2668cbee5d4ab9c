package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	pgxv5 "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	manager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"fair-draw-service/internal/config"
	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/http/router"
	"fair-draw-service/internal/infrastructure/nower"
	"fair-draw-service/internal/infrastructure/randomizer"
	"fair-draw-service/internal/repository"
	"fair-draw-service/internal/service"
)

func TestDrawLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("пропуск интеграционного теста в режиме -short")
	}
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("testcontainers не поддерживается в среде Windows CI")
	}

	ctx := context.Background()
	pool := startDatabase(t, ctx)

	server := newServer(t, ctx, pool)
	defer server.Close()

	var classes struct {
		Classes []domain.ClassInfo `json:"classes"`
	}
	resp := doRequest(t, server, http.MethodGet, "/classes/list", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &classes)
	require.Len(t, classes.Classes, 2)

	resp = doRequest(t, server, http.MethodPost, "/classes/add", map[string]string{"class_name": "2-C"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/roster/set", map[string]any{
		"class_name": "2-C", "k": 3, "l": 2, "n": 3,
		"names": []string{"Aiko", "Ren", "Sora"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/draw/pick", map[string]string{"class_name": "2-C"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/plan/prepare", map[string]string{"class_name": "2-C"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary domain.PlanSummary
	decode(t, resp, &summary)
	require.Equal(t, 6, summary.PoolSize)

	var called []string
	for {
		resp = doRequest(t, server, http.MethodPost, "/draw/pick", map[string]any{
			"class_name": "2-C", "absent_names": []string{"Ren"},
		})
		if resp.StatusCode == http.StatusConflict {
			resp.Body.Close()
			break
		}
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result domain.DrawResult
		decode(t, resp, &result)
		require.NotEqual(t, "Ren", result.Name)
		called = append(called, result.Name)
	}
	require.NotEmpty(t, called)

	resp = doRequest(t, server, http.MethodGet, "/history/export?class_name=2-C", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	csv, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(csv), "番号,名前,指名済")

	// Состояние переживает перезапуск сервиса
	restarted := newServer(t, ctx, pool)
	defer restarted.Close()

	var view domain.RosterView
	resp = doRequest(t, restarted, http.MethodGet, "/roster/get?class_name=2-C", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &view)
	require.Len(t, view.Called, len(called))
	require.NotEqual(t, domain.StateUninitialized, view.State)

	importReq, err := http.NewRequest(http.MethodPost, restarted.URL+"/history/import?class_name=1-A", bytes.NewReader(csv))
	require.NoError(t, err)
	importReq.Header.Set("Content-Type", "text/csv")
	resp, err = http.DefaultClient.Do(importReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &view)
	require.Equal(t, "1-A", view.Class.Name)
	require.Equal(t, []string{"Aiko", "Ren", "Sora"}, view.Class.Names)

	for _, name := range []string{"2-C", "1-B"} {
		resp = doRequest(t, restarted, http.MethodPost, "/classes/delete", map[string]string{"class_name": name})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	resp = doRequest(t, restarted, http.MethodPost, "/classes/delete", map[string]string{"class_name": "1-A"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

// newServer поднимает сервис поверх общей БД, как при старте приложения.
func newServer(t *testing.T, ctx context.Context, pool *pgxpool.Pool) *httptest.Server {
	t.Helper()
	repo := repository.New(pool, nower.New())
	trMgr := manager.Must(pgxv5.NewDefaultFactory(pool))
	svc := service.New(repo, config.Config{
		Timeouts: config.TimeoutConfig{
			Operation:     5 * time.Second,
			LongOperation: 30 * time.Second,
		},
		Scheduler: config.SchedulerConfig{SeedStep: 10_000, SeedMax: 100_000, ShuffleSeed: 42},
		Defaults:  config.DefaultsConfig{K: 2, L: 1, N: 2, Classes: []string{"1-A", "1-B"}},
	}, trMgr, randomizer.New(42))
	require.NoError(t, svc.Restore(ctx))

	spec, err := os.ReadFile(filepath.Join(repoRoot(t), "openapi.yml"))
	require.NoError(t, err)
	return httptest.NewServer(router.New(svc, spec).Router())
}

// startDatabase поднимает Postgres в контейнере, применяет миграции и возвращает готовый пул.
func startDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	startCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(startCtx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fair_draw"),
		tcpostgres.WithUsername("draw"),
		tcpostgres.WithPassword("draw"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(startCtx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.Eventually(t, func() bool {
		return pool.Ping(startCtx) == nil
	}, time.Minute, 500*time.Millisecond, "postgres is not reachable")

	migrations := filepath.Join(repoRoot(t), "migrations")
	m, err := migrate.New("file://"+filepath.ToSlash(migrations), dsn)
	require.NoError(t, err)
	defer m.Close()
	if err := m.Up(); !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}
	return pool
}

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func doRequest(t *testing.T, server *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
