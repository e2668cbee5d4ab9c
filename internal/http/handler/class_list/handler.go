package classlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/http/handler/common"
)

// Handler реализует HTTP-эндпоинт списка классов.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(router chi.Router) {
	router.Get("/list", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	common.RespondJSON(w, http.StatusOK, map[string][]domain.ClassInfo{"classes": h.useCase.ListClasses(r.Context())})
	return nil
}
