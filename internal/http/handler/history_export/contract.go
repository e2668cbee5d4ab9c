package historyexport

import (
	"context"
	"io"
)

type UseCase interface {
	ExportHistory(ctx context.Context, name string, w io.Writer) error
}
