package logging

import (
	"context"
	"errors"
)

// errorWithLogCtx несёт поля лога от места ошибки до места, где она пишется в лог.
type errorWithLogCtx struct {
	next error
	ctx  logCtx
}

func (e *errorWithLogCtx) Error() string {
	return e.next.Error()
}

func (e *errorWithLogCtx) Unwrap() error {
	return e.next
}

// WrapError прикрепляет к ошибке поля лога из ctx. nil остаётся nil.
func WrapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	c, _ := ctx.Value(key).(logCtx)
	return &errorWithLogCtx{next: err, ctx: c}
}

// ErrorCtx дополняет ctx полями, прикреплёнными к ошибке. Поля ctx имеют приоритет.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *errorWithLogCtx
	if !errors.As(err, &e) {
		return ctx
	}
	c, _ := ctx.Value(key).(logCtx)
	return context.WithValue(ctx, key, c.merge(e.ctx))
}
