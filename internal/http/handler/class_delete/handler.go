package classdelete

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/http/handler/common"
)

// Handler реализует удаление класса. Последний класс удалить нельзя.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(router chi.Router) {
	router.Post("/delete", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	var req common.ClassRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.useCase.DeleteClass(r.Context(), req.ClassName); err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"class_name": req.ClassName, "status": "deleted"})
	return nil
}
