package notifier

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

// Log records every emitted message at debug level.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Emit implements notification.Notifier.
func (l *Log) Emit(ctx context.Context, msg notification.Message) error {
	l.logger.DebugContext(ctx, "notification emitted",
		slog.String("event", string(msg.Event)),
		slog.String("room", msg.Room),
	)
	return nil
}
