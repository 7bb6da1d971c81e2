// Package notify carries user-facing notices (the dashboard's toasts) from
// services back to the HTTP response that triggered them.
package notify

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(level Level, message string)
}

// Collector gathers notices raised while serving a single request.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{Level: level, Message: message})
}

// Notices returns a copy of the collected notices, never nil.
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	notices := make([]Notice, len(c.notices))
	copy(notices, c.notices)
	return notices
}

type logNotifier struct{}

func (logNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		log.Errorf("notice: %s", message)
	case LevelWarning:
		log.Warnf("notice: %s", message)
	default:
		log.Infof("notice: %s", message)
	}
}

type contextKey string

const notifierKey contextKey = "notifier"

func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey, n)
}

// From returns the notifier bound to ctx. Without one, notices are only logged.
func From(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierKey).(Notifier); ok && n != nil {
		return n
	}
	return logNotifier{}
}

func Info(ctx context.Context, format string, args ...any) {
	From(ctx).Notify(LevelInfo, fmt.Sprintf(format, args...))
}

func Warn(ctx context.Context, format string, args ...any) {
	From(ctx).Notify(LevelWarning, fmt.Sprintf(format, args...))
}

func Error(ctx context.Context, format string, args ...any) {
	From(ctx).Notify(LevelError, fmt.Sprintf(format, args...))
}

// NoticesFrom returns the notices collected for ctx, or an empty slice when
// no Collector is attached.
func NoticesFrom(ctx context.Context) []Notice {
	if c, ok := ctx.Value(notifierKey).(*Collector); ok && c != nil {
		return c.Notices()
	}
	return []Notice{}
}
