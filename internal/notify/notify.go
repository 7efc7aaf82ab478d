// Package notify carries transient user-facing notifications to one or more sinks.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level is the notification severity shown to the user.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one transient message.
type Notification struct {
	Time    time.Time `json:"ts"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Action  string    `json:"action,omitempty"`
	RunID   string    `json:"run_id,omitempty"`
}

// Notifier receives notifications. Implementations must not block for long.
type Notifier interface {
	Notify(n Notification)
}

// Fanout delivers to every sink in order.
type Fanout []Notifier

func (f Fanout) Notify(n Notification) {
	if n.Time.IsZero() {
		n.Time = time.Now().UTC()
	}
	for _, sink := range f {
		if sink != nil {
			sink.Notify(n)
		}
	}
}

// Logger writes notifications to a zap logger.
type Logger struct {
	log *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{log: logger.Named("notify")}
}

func (l *Logger) Notify(n Notification) {
	fields := []zap.Field{zap.String("level", string(n.Level))}
	if n.Action != "" {
		fields = append(fields, zap.String("action", n.Action))
	}
	if n.RunID != "" {
		fields = append(fields, zap.String("run_id", n.RunID))
	}
	switch n.Level {
	case LevelError:
		l.log.Error(n.Message, fields...)
	case LevelWarning:
		l.log.Warn(n.Message, fields...)
	default:
		l.log.Info(n.Message, fields...)
	}
}

// Console prints one line per notification, e.g. "[success] Wallet connected!".
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[%s] %s\n", n.Level, n.Message)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Messages returns the recorded messages in delivery order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n.Message)
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
