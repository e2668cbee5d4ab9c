package rosterget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"fair-draw-service/internal/domain"
)

type stubUseCase struct{}

func (stubUseCase) GetRoster(ctx context.Context, name string) (domain.RosterView, error) {
	if name != "1-A" {
		return domain.RosterView{}, domain.ErrClassNotFound
	}
	return domain.RosterView{
		Class:     domain.Class{Name: name, Params: domain.Params{K: 2, L: 1, N: 2}, Names: []string{"Aiko", "Ren"}},
		State:     domain.StateDrawing,
		Remaining: 1,
		Called:    []domain.Member{{Number: 2, Name: "Ren"}},
	}, nil
}

func serve(target string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	New(stubUseCase{}).Register(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_GetRoster(t *testing.T) {
	t.Parallel()

	rec := serve("/get?class_name=1-A")
	require.Equal(t, http.StatusOK, rec.Code)

	var view domain.RosterView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, domain.StateDrawing, view.State)
	require.Equal(t, []domain.Member{{Number: 2, Name: "Ren"}}, view.Called)
}

func TestHandler_GetRosterErrors(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.StatusBadRequest, serve("/get").Code)
	require.Equal(t, http.StatusNotFound, serve("/get?class_name=ghost").Code)
}
