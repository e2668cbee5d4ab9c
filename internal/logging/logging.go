package logging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
)

type keyType int

const key = keyType(0)

// logCtx содержит поля запроса и класса, которые попадают в каждую запись лога.
type logCtx struct {
	RequestID       string
	Status          int
	RequestDuration string
	Method          string
	Path            string
	ClassName       string
	RosterSize      int
	Generator       string
	StudentNumber   int
}

// attrs возвращает непустые поля в виде атрибутов slog.
func (c logCtx) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 9)
	addString := func(k, v string) {
		if v != "" {
			attrs = append(attrs, slog.String(k, v))
		}
	}
	addInt := func(k string, v int) {
		if v != 0 {
			attrs = append(attrs, slog.Int(k, v))
		}
	}
	addString("request_id", c.RequestID)
	addString("method", c.Method)
	addString("path", c.Path)
	addInt("status", c.Status)
	addString("duration", c.RequestDuration)
	addString("class_name", c.ClassName)
	addInt("roster_size", c.RosterSize)
	addString("generator", c.Generator)
	addInt("student_number", c.StudentNumber)
	return attrs
}

// merge дополняет пустые поля c значениями из other.
func (c logCtx) merge(other logCtx) logCtx {
	if c.RequestID == "" {
		c.RequestID = other.RequestID
	}
	if c.Method == "" {
		c.Method = other.Method
	}
	if c.Path == "" {
		c.Path = other.Path
	}
	if c.ClassName == "" {
		c.ClassName = other.ClassName
	}
	if c.RosterSize == 0 {
		c.RosterSize = other.RosterSize
	}
	if c.Generator == "" {
		c.Generator = other.Generator
	}
	if c.StudentNumber == 0 {
		c.StudentNumber = other.StudentNumber
	}
	return c
}

// LoggerImpl оборачивает slog.Handler и добавляет поля из контекста.
type LoggerImpl struct {
	next slog.Handler
}

func NewLoggerImpl(next slog.Handler) *LoggerImpl {
	return &LoggerImpl{next: next}
}

// Enabled проверяет, включён ли указанный уровень логирования.
func (h *LoggerImpl) Enabled(ctx context.Context, rec slog.Level) bool {
	return h.next.Enabled(ctx, rec)
}

// Handle добавляет к записи поля контекста и место вызова.
func (h *LoggerImpl) Handle(ctx context.Context, rec slog.Record) error {
	if c, ok := ctx.Value(key).(logCtx); ok {
		rec.AddAttrs(c.attrs()...)
	}
	if rec.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{rec.PC}).Next()
		rec.Add("source", fmt.Sprintf("%s:%d", f.File, f.Line))
	}
	return h.next.Handle(ctx, rec)
}

func (h *LoggerImpl) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LoggerImpl{next: h.next.WithAttrs(attrs)}
}

func (h *LoggerImpl) WithGroup(name string) slog.Handler {
	return &LoggerImpl{next: h.next.WithGroup(name)}
}
