package historyexport

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/http/handler/common"
)

// Handler отдаёт историю вызовов класса в CSV.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// Register вешает эндпоинт GET /history/export.
func (h *Handler) Register(router chi.Router) {
	router.Get("/export", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	name, err := common.RequiredQuery(r, "class_name")
	if err != nil {
		return err
	}
	// Пишем в буфер, чтобы ошибка не пришла после заголовков.
	var buf bytes.Buffer
	if err := h.useCase.ExportHistory(r.Context(), name, &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s.csv", url.PathEscape(name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	return nil
}
