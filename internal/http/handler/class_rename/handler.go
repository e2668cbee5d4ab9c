package classrename

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/http/handler/common"
)

// Handler реализует переименование класса.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(router chi.Router) {
	router.Post("/rename", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	var req common.RenameRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	class, err := h.useCase.RenameClass(r.Context(), req.ClassName, req.NewName)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, map[string]domain.ClassInfo{"class": class})
	return nil
}
