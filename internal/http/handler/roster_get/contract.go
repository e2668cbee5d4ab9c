package rosterget

import (
	"context"

	"fair-draw-service/internal/domain"
)

type UseCase interface {
	GetRoster(ctx context.Context, name string) (domain.RosterView, error)
}
