package planprepare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"fair-draw-service/internal/domain"
)

type stubUseCase struct {
	err error
}

func (s stubUseCase) PreparePlan(ctx context.Context, name string) (domain.PlanSummary, error) {
	if s.err != nil {
		return domain.PlanSummary{}, s.err
	}
	return domain.PlanSummary{ClassName: name, Generator: "xorshift", Seed: 150_000, PoolSize: 105}, nil
}

func serve(useCase UseCase) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	New(useCase).Register(router)
	req := httptest.NewRequest(http.MethodPost, "/prepare", strings.NewReader(`{"class_name":"1-A"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Prepare(t *testing.T) {
	t.Parallel()

	rec := serve(stubUseCase{})
	require.Equal(t, http.StatusOK, rec.Code)

	var summary domain.PlanSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, "1-A", summary.ClassName)
	require.Equal(t, 105, summary.PoolSize)
}

func TestHandler_PrepareBusy(t *testing.T) {
	t.Parallel()

	rec := serve(stubUseCase{err: domain.ErrClassBusy})
	require.Equal(t, http.StatusConflict, rec.Code)
}
