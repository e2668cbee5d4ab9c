package rosterset

import (
	"context"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/service"
)

type UseCase interface {
	SetRoster(ctx context.Context, input service.RosterInput) (domain.RosterView, error)
}
