package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith/internal/logger"
)

// Level is the severity of a notice.
type Level int

// Notice levels.
const (
	LevelInfo Level = iota
	LevelError
)

// Notice is a transient, dismissible message for the user.
type Notice struct {
	Level       Level
	Title       string
	Description string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs n at info or error level.
func (l LogNotifier) Notify(ctx context.Context, n Notice) {
	log := l.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	fields := []zap.Field{zap.String("title", n.Title), zap.String("description", n.Description)}
	if n.Level == LevelError {
		log.Error("notice", fields...)
		return
	}
	log.Info("notice", fields...)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notice) {}
