package classadd

import (
	"context"

	"fair-draw-service/internal/domain"
)

type UseCase interface {
	CreateClass(ctx context.Context, name string) (domain.ClassInfo, error)
}
