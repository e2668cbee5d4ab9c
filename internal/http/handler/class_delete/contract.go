package classdelete

import "context"

type UseCase interface {
	DeleteClass(ctx context.Context, name string) error
}
