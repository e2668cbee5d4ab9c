package classlist

import (
	"context"

	"fair-draw-service/internal/domain"
)

type UseCase interface {
	ListClasses(ctx context.Context) []domain.ClassInfo
}
