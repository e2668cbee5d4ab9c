package planprepare

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/http/handler/common"
)

// Handler запускает поиск плана для класса и строит новый пул.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// Register вешает эндпоинт POST /plan/prepare.
func (h *Handler) Register(router chi.Router) {
	router.Post("/prepare", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	var req common.ClassRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	summary, err := h.useCase.PreparePlan(r.Context(), req.ClassName)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, summary)
	return nil
}
