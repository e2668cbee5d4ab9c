package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fair-draw-service/internal/config"
)

// Setup устанавливает JSON-логгер по умолчанию с полями из контекста.
// Output: stdout, stderr или путь к файлу. Возвращает функцию закрытия файла.
func Setup(cfg config.LoggingConfig) (func(), error) {
	writer, closer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	handler := slog.Handler(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}))
	slog.SetDefault(slog.New(NewLoggerImpl(handler)))

	return func() {
		if closer != nil {
			_ = closer.Close()
		}
	}, nil
}

// ParseLevel переводит имя уровня в slog.Level; неизвестное имя даёт Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(output) {
	case "stdout", "":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f, nil
}
