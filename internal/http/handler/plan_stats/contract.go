package planstats

import (
	"context"

	"fair-draw-service/internal/domain"
)

type UseCase interface {
	Stats(ctx context.Context, name string) (domain.PlanStats, error)
}
