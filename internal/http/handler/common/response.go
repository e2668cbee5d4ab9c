package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/logging"
)

type APIError struct {
	Error APIErrorBody `json:"error"`
}

type APIErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondJSON отправляет JSON-ответ с указанным статус-кодом.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// HTTPError описывает контролируемую HTTP-ошибку.
type HTTPError struct {
	status  int
	code    string
	message string
}

func (e *HTTPError) Error() string {
	return e.message
}

// NewHTTPError создаёт новую HTTP-ошибку.
func NewHTTPError(status int, code, message string) *HTTPError {
	return &HTTPError{
		status:  status,
		code:    code,
		message: message,
	}
}

// NewBadRequestError создаёт 400 ошибку.
func NewBadRequestError(code, message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, code, message)
}

// WithErrorHandling оборачивает обработчик, централизуя выдачу ошибок.
func WithErrorHandling(fn func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				RespondJSON(w, httpErr.status, APIError{
					Error: APIErrorBody{Code: httpErr.code, Message: httpErr.message},
				})
				return
			}
			WriteDomainError(w, r, err)
		}
	}
}

type domainErrorMapping struct {
	target error
	status int
	code   string
}

// Порядок важен: первая подходящая ошибка определяет ответ.
var domainErrors = []domainErrorMapping{
	{domain.ErrInvalidParameter, http.StatusBadRequest, "VALIDATION_ERROR"},
	{domain.ErrMalformedRecord, http.StatusBadRequest, "MALFORMED_RECORD"},
	{domain.ErrClassNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrClassExists, http.StatusConflict, "CLASS_EXISTS"},
	{domain.ErrLastClass, http.StatusConflict, "LAST_CLASS"},
	{domain.ErrClassBusy, http.StatusConflict, "CLASS_BUSY"},
	{domain.ErrExhaustedPool, http.StatusConflict, "POOL_EXHAUSTED"},
	{domain.ErrPlanNotSelected, http.StatusConflict, "PLAN_NOT_READY"},
}

// WriteDomainError преобразует доменные ошибки в HTTP-ответы.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := logging.ErrorCtx(r.Context(), err)

	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			slog.DebugContext(ctx, "domain error", "code", m.code, "error", err)
			RespondJSON(w, m.status, APIError{Error: APIErrorBody{Code: m.code, Message: err.Error()}})
			return
		}
	}
	slog.ErrorContext(ctx, "unhandled domain error", "error", err)
	RespondJSON(w, http.StatusInternalServerError, APIError{Error: APIErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}})
}
