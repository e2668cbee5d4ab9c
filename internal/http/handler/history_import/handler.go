package historyimport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/http/handler/common"
)

// MaxUploadSize ограничение на размер загружаемого CSV.
const MaxUploadSize = 1 << 20

// Handler загружает историю вызовов из CSV в указанный класс.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// Register вешает эндпоинт POST /history/import.
func (h *Handler) Register(router chi.Router) {
	router.Post("/import", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	name, err := common.RequiredQuery(r, "class_name")
	if err != nil {
		return err
	}
	body := http.MaxBytesReader(w, r.Body, MaxUploadSize)
	view, err := h.useCase.ImportHistory(r.Context(), name, body)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, view)
	return nil
}
