package rosterset

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/http/handler/common"
	"fair-draw-service/internal/service"
)

// Handler полностью заменяет параметры и список класса.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// Register вешает эндпоинт POST /roster/set.
func (h *Handler) Register(router chi.Router) {
	router.Post("/set", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	var req common.RosterRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	view, err := h.useCase.SetRoster(r.Context(), toInput(req))
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, view)
	return nil
}

func toInput(req common.RosterRequest) service.RosterInput {
	return service.RosterInput{
		ClassName: req.ClassName,
		Params:    domain.Params{K: req.K, L: req.L, N: req.N},
		Names:     req.Names,
		Settings:  domain.Settings{SoundOn: req.SoundOn, AutoSave: req.AutoSave},
	}
}
