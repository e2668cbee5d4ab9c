package planstats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/http/handler/common"
)

type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(router chi.Router) {
	router.Get("/stats", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	name, err := common.RequiredQuery(r, "class_name")
	if err != nil {
		return err
	}
	stats, err := h.useCase.Stats(r.Context(), name)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, stats)
	return nil
}
