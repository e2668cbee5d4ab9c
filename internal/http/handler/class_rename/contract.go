package classrename

import (
	"context"

	"fair-draw-service/internal/domain"
)

type UseCase interface {
	RenameClass(ctx context.Context, oldName, newName string) (domain.ClassInfo, error)
}
