package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/httplog/v3"
)

type Options struct {
	App     string
	Version string
	Env     string
	Level   string
}

// New builds the process logger: JSON lines with ECS field names.
func New(opts Options) *slog.Logger {
	return NewWithWriter(os.Stdout, opts)
}

func NewWithWriter(w io.Writer, opts Options) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.App),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown values are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
