package drawpick

import (
	"context"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/service"
)

type UseCase interface {
	Draw(ctx context.Context, input service.DrawInput) (domain.DrawResult, error)
}
