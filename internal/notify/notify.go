// Package notify delivers transient user-visible notifications and maps the
// pricing API error taxonomy onto them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/me/pricedesk/pkg/model"
)

// Notifier receives notifications. Implementations must not block the caller.
type Notifier interface {
	Notify(n model.Notification)
}

// Func adapts a function to Notifier.
type Func func(n model.Notification)

// Notify calls f(n).
func (f Func) Notify(n model.Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(model.Notification) {})

// Success sends a success notification.
func Success(n Notifier, format string, args ...any) {
	send(n, model.LevelSuccess, "", fmt.Sprintf(format, args...))
}

// Info sends an informational notification.
func Info(n Notifier, format string, args ...any) {
	send(n, model.LevelInfo, "", fmt.Sprintf(format, args...))
}

// Report turns err into one or more error notifications:
//   - validation failures produce one notification per field message
//   - transport failures, expired sessions and server errors produce one each
//
// Superseded requests (context.Canceled) are not reported.
func Report(n Notifier, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	var verr *model.ValidationError
	var terr *model.TransportError
	var serr *model.ServerError
	switch {
	case errors.As(err, &verr):
		details := verr.Details()
		if len(details) == 0 {
			send(n, model.LevelError, "", verr.Error())
			return
		}
		for _, d := range details {
			send(n, model.LevelError, d.Field, d.Field+": "+d.Message)
		}
	case errors.Is(err, model.ErrSessionExpired):
		send(n, model.LevelError, "", "Your session has expired. Please log in again.")
	case errors.As(err, &terr):
		send(n, model.LevelError, "", fmt.Sprintf("Network error: could not reach the pricing service (%v)", terr.Err))
	case errors.As(err, &serr):
		msg := serr.Message
		if msg == "" {
			msg = fmt.Sprintf("The pricing service failed (HTTP %d)", serr.Status)
		}
		send(n, model.LevelError, "", msg)
	default:
		send(n, model.LevelError, "", err.Error())
	}
}

func send(n Notifier, level model.Level, field, msg string) {
	if n == nil {
		return
	}
	n.Notify(model.Notification{
		Level:     level,
		Field:     field,
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	})
}

// Recorder keeps notifications in memory until drained.
type Recorder struct {
	mu    sync.Mutex
	items []model.Notification
}

// Notify appends n.
func (r *Recorder) Notify(n model.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notification(nil), r.items...)
}

// Drain returns and clears the recorded notifications.
func (r *Recorder) Drain() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// Writer prints notifications as status lines, for the CLI.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer notifier.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify prints one line per notification.
func (w *Writer) Notify(n model.Notification) {
	prefix := "•"
	switch n.Level {
	case model.LevelSuccess:
		prefix = "✓"
	case model.LevelError:
		prefix = "✗"
	}
	w.mu.Lock()
	fmt.Fprintf(w.w, "%s %s\n", prefix, n.Message)
	w.mu.Unlock()
}
