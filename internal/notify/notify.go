// Package notify is the user-facing status surface. The browser frontend
// this client descends from rendered these as overlay toasts; the CLI
// prints them through the application logger.
package notify

import (
	"sync"

	"github.com/rs/zerolog"
)

// Severity of a notification.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Notification is a single user-visible message. Actions are hints the
// surface may render ("retry", "contact support"); the client never acts on
// them itself.
type Notification struct {
	Severity Severity
	Message  string
	Actions  []string
}

// Notifier surfaces notifications to the user. Every failure class in the
// auth flow produces exactly one notification; implementations must not
// deduplicate or drop.
type Notifier interface {
	Notify(n Notification)
}

// Console logs notifications through zerolog.
type Console struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (c *Console) Notify(n Notification) {
	evt := c.Logger.Info()
	switch n.Severity {
	case Warning:
		evt = c.Logger.Warn()
	case Error, Critical:
		evt = c.Logger.Error()
	}
	if len(n.Actions) > 0 {
		evt = evt.Strs("actions", n.Actions)
	}
	evt.Str("severity", n.Severity.String()).Msg(n.Message)
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu   sync.Mutex
	Sent []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, n)
}

// All returns a copy of everything recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.Sent))
	copy(out, r.Sent)
	return out
}
