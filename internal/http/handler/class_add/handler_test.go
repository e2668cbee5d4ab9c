package classadd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"fair-draw-service/internal/domain"
)

type stubUseCase struct {
	name string
	err  error
}

func (s *stubUseCase) CreateClass(ctx context.Context, name string) (domain.ClassInfo, error) {
	s.name = name
	if s.err != nil {
		return domain.ClassInfo{}, s.err
	}
	return domain.ClassInfo{Name: name, State: domain.StateUninitialized, Size: 30}, nil
}

func serve(t *testing.T, useCase *stubUseCase, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	New(useCase).Register(router)
	req := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Success(t *testing.T) {
	t.Parallel()

	useCase := &stubUseCase{}
	rec := serve(t, useCase, `{"class_name":"2-C"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "2-C", useCase.name)
	require.Contains(t, rec.Body.String(), `"class_name":"2-C"`)
}

func TestHandler_Conflict(t *testing.T) {
	t.Parallel()

	rec := serve(t, &stubUseCase{err: domain.ErrClassExists}, `{"class_name":"1-A"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "CLASS_EXISTS")
}

func TestHandler_EmptyName(t *testing.T) {
	t.Parallel()

	useCase := &stubUseCase{}
	rec := serve(t, useCase, `{"class_name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, useCase.name)
}
