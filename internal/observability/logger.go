package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a JSON logger that stamps trace and span ids on records logged with a traced
// context. dev logs at debug level, everything else at info.
func NewLogger(env string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo

	if strings.EqualFold(env, "dev") {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
