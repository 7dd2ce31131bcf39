// Package notify carries the user-facing notifications (toasts) that
// controllers emit after each operation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"campusride/internal/clock"
	"campusride/internal/logging"
	"campusride/internal/queue"
)

// MessageType tags notification messages on the queue.
const MessageType = "notification"

// Level is the visual severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a toast shown by the presentation layer.
type Notification struct {
	ID          string    `json:"id,omitempty"`
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	At          time.Time `json:"at,omitempty"`
}

func Success(title, description string) Notification {
	return Notification{Level: LevelSuccess, Title: title, Description: description}
}

func Info(title, description string) Notification {
	return Notification{Level: LevelInfo, Title: title, Description: description}
}

func Error(title, description string) Notification {
	return Notification{Level: LevelError, Title: title, Description: description}
}

// For attributes the notification to a user.
func (n Notification) For(userID string) Notification {
	n.UserID = userID
	return n
}

// Notifier receives notifications. Implementations must not fail the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) {}

// OrDiscard returns n, or Discard when n is nil.
func OrDiscard(n Notifier) Notifier {
	if n == nil {
		return Discard{}
	}
	return n
}

// Publisher stamps notifications and publishes them to a queue.
type Publisher struct {
	q      queue.Queue
	clock  clock.Clock
	logger *slog.Logger
}

// NewPublisher builds a Publisher. A nil clock uses real time.
func NewPublisher(q queue.Queue, c clock.Clock, logger *slog.Logger) *Publisher {
	return &Publisher{q: q, clock: clock.OrReal(c), logger: logging.OrDiscard(logger)}
}

// Notify publishes n. Queue failures are logged and swallowed.
func (p *Publisher) Notify(ctx context.Context, n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.At.IsZero() {
		n.At = p.clock.Now().UTC()
	}
	body, err := json.Marshal(n)
	if err != nil {
		p.logger.Warn("notification encode failed", slog.Any("error", err))
		return
	}
	if err := p.q.Publish(ctx, queue.Message{Type: MessageType, Body: body}); err != nil {
		p.logger.Warn("notification publish failed",
			slog.String("title", n.Title), slog.Any("error", err))
	}
}

// Decode extracts a notification from a queue message.
func Decode(msg queue.Message) (Notification, error) {
	if msg.Type != MessageType {
		return Notification{}, fmt.Errorf("notify: unexpected message type %q", msg.Type)
	}
	var n Notification
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		return Notification{}, fmt.Errorf("notify: decode: %w", err)
	}
	return n, nil
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns every recorded notification in order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
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

// Fanout forwards to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, target := range f {
		target.Notify(ctx, n)
	}
}
