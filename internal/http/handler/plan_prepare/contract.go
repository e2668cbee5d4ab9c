package planprepare

import (
	"context"

	"fair-draw-service/internal/domain"
)

type UseCase interface {
	PreparePlan(ctx context.Context, name string) (domain.PlanSummary, error)
}
