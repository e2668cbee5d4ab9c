package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fair-draw-service/internal/domain"
)

func TestRespondJSONWritesBodyAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, http.StatusAccepted, map[string]string{"ok": "true"})

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&body))
	require.Equal(t, "true", body["ok"])
}

func TestWithErrorHandlingReturnsHTTPError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler := WithErrorHandling(func(http.ResponseWriter, *http.Request) error {
		return NewHTTPError(http.StatusTeapot, "CUSTOM", "boom")
	})
	handler(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	require.Equal(t, "CUSTOM", apiErr.Error.Code)
}

func TestWriteDomainErrorMapsWrappedErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: k=0", domain.ErrInvalidParameter), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("%w: line 3", domain.ErrMalformedRecord), http.StatusBadRequest, "MALFORMED_RECORD"},
		{domain.ErrClassNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrClassExists, http.StatusConflict, "CLASS_EXISTS"},
		{domain.ErrLastClass, http.StatusConflict, "LAST_CLASS"},
		{domain.ErrClassBusy, http.StatusConflict, "CLASS_BUSY"},
		{domain.ErrExhaustedPool, http.StatusConflict, "POOL_EXHAUSTED"},
		{domain.ErrPlanNotSelected, http.StatusConflict, "PLAN_NOT_READY"},
		{errors.New("unexpected"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			WithErrorHandling(func(http.ResponseWriter, *http.Request) error {
				return tc.err
			})(rec, req)

			require.Equal(t, tc.status, rec.Code)
			var apiErr APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			require.Equal(t, tc.code, apiErr.Error.Code)
		})
	}
}

func TestDecodeJSONValidatesRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"class_name":"1-A","k":3,"l":0,"n":2}`))
	var roster RosterRequest
	err := DecodeJSON(req, &roster)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, "VALIDATION_ERROR", httpErr.code)
	require.Contains(t, httpErr.message, "l")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"class_name":`))
	require.ErrorAs(t, DecodeJSON(req, &roster), &httpErr)
	require.Equal(t, "INVALID_BODY", httpErr.code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"class_name":"1-A","absent_names":["Ren"]}`))
	var draw DrawRequest
	require.NoError(t, DecodeJSON(req, &draw))
	require.Equal(t, []string{"Ren"}, draw.AbsentNames)
}

func TestRequiredQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?class_name=1-A", nil)
	value, err := RequiredQuery(req, "class_name")
	require.NoError(t, err)
	require.Equal(t, "1-A", value)

	_, err = RequiredQuery(httptest.NewRequest(http.MethodGet, "/", nil), "class_name")
	require.Error(t, err)
}
