package rosterget

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/http/handler/common"
)

// Handler возвращает список класса и состояние розыгрыша.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(router chi.Router) {
	router.Get("/get", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	name, err := common.RequiredQuery(r, "class_name")
	if err != nil {
		return err
	}
	view, err := h.useCase.GetRoster(r.Context(), name)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, view)
	return nil
}
