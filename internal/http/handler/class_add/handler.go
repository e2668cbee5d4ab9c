package classadd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/http/handler/common"
)

// Handler отвечает за HTTP-слой создания класса.
type Handler struct {
	useCase UseCase
}

// New создаёт новый feature-handler.
func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// Register вешает эндпоинт POST /classes/add.
func (h *Handler) Register(router chi.Router) {
	router.Post("/add", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	var req common.ClassRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	class, err := h.useCase.CreateClass(r.Context(), req.ClassName)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusCreated, map[string]domain.ClassInfo{"class": class})
	return nil
}
