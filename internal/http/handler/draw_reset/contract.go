package drawreset

import (
	"context"

	"fair-draw-service/internal/domain"
)

type UseCase interface {
	Reset(ctx context.Context, name string) (domain.RosterView, error)
}
