package logging

import "context"

func update(ctx context.Context, fn func(*logCtx)) context.Context {
	c, _ := ctx.Value(key).(logCtx)
	fn(&c)
	return context.WithValue(ctx, key, c)
}

// WithLogRequestID добавляет request ID в контекст.
func WithLogRequestID(ctx context.Context, requestID string) context.Context {
	return update(ctx, func(c *logCtx) { c.RequestID = requestID })
}

// WithLogRequestPath добавляет путь запроса в контекст.
func WithLogRequestPath(ctx context.Context, path string) context.Context {
	return update(ctx, func(c *logCtx) { c.Path = path })
}

// WithLogRequestMethod добавляет метод запроса в контекст.
func WithLogRequestMethod(ctx context.Context, method string) context.Context {
	return update(ctx, func(c *logCtx) { c.Method = method })
}

// WithLogRequestStatus добавляет код ответа.
func WithLogRequestStatus(ctx context.Context, status int) context.Context {
	return update(ctx, func(c *logCtx) { c.Status = status })
}

// WithLogRequestDuration добавляет длительность обработки.
func WithLogRequestDuration(ctx context.Context, duration string) context.Context {
	return update(ctx, func(c *logCtx) { c.RequestDuration = duration })
}

// WithLogClassName добавляет имя класса.
func WithLogClassName(ctx context.Context, className string) context.Context {
	return update(ctx, func(c *logCtx) { c.ClassName = className })
}

// WithLogRosterSize добавляет размер класса.
func WithLogRosterSize(ctx context.Context, n int) context.Context {
	return update(ctx, func(c *logCtx) { c.RosterSize = n })
}

// WithLogGenerator добавляет имя выбранного генератора.
func WithLogGenerator(ctx context.Context, generator string) context.Context {
	return update(ctx, func(c *logCtx) { c.Generator = generator })
}

// WithLogStudentNumber добавляет номер вызванного ученика (с единицы).
func WithLogStudentNumber(ctx context.Context, number int) context.Context {
	return update(ctx, func(c *logCtx) { c.StudentNumber = number })
}
