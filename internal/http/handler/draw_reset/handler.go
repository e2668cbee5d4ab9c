package drawreset

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/http/handler/common"
)

// Handler очищает историю вызовов класса, пул остаётся прежним.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(router chi.Router) {
	router.Post("/reset", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	var req common.ClassRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	view, err := h.useCase.Reset(r.Context(), req.ClassName)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, view)
	return nil
}
