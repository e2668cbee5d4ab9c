package drawpick

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/http/handler/common"
	"fair-draw-service/internal/service"
)

// Handler вызывает следующего ученика из пула класса.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// Register вешает эндпоинт POST /draw/pick.
func (h *Handler) Register(router chi.Router) {
	router.Post("/pick", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	var req common.DrawRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	result, err := h.useCase.Draw(r.Context(), service.DrawInput{
		ClassName:   req.ClassName,
		AbsentNames: req.AbsentNames,
	})
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, result)
	return nil
}
