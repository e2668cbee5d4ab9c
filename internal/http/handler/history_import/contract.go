package historyimport

import (
	"context"
	"io"

	"fair-draw-service/internal/domain"
)

type UseCase interface {
	ImportHistory(ctx context.Context, name string, r io.Reader) (domain.RosterView, error)
}
