package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestGetEndpointPrefersRoutePattern(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.RoutePatterns = []string{"/roster/{class_name}"}

	req := httptest.NewRequest(http.MethodGet, "/roster/1-A", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	require.Equal(t, "/roster/{class_name}", getEndpoint(req))

	require.Equal(t, "/custom", getEndpoint(httptest.NewRequest(http.MethodGet, "/custom", nil)))
	require.Equal(t, "/", getEndpoint(nil))
}
