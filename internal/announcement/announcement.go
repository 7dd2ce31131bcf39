// Package announcement validates and sends admin announcements.
package announcement

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"campusride/internal/clock"
	"campusride/internal/directory"
	"campusride/internal/logging"
	"campusride/internal/notify"
)

// ErrMissingField is matched by every *FieldError.
var ErrMissingField = errors.New("missing field")

// FieldError lists the required fields that were empty.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return ErrMissingField.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *FieldError) Unwrap() error { return ErrMissingField }

// Validate requires a non-blank title and message.
func Validate(title, message string) error {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return &FieldError{Fields: missing}
	}
	return nil
}

// Draft is the compose form.
type Draft struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Broadcaster builds announcements for one admin session. There is no
// delivery to other sessions; success is reported through the notifier.
type Broadcaster struct {
	clock    clock.Clock
	senderID string
	notifier notify.Notifier
	logger   *slog.Logger
	draft    Draft
}

// NewBroadcaster returns a Broadcaster with an empty draft.
func NewBroadcaster(c clock.Clock, senderID string, notifier notify.Notifier, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		clock:    clock.OrReal(c),
		senderID: senderID,
		notifier: notify.OrDiscard(notifier),
		logger:   logging.OrDiscard(logger).With(slog.String("user_id", senderID)),
	}
}

// Draft returns the compose form as last submitted.
func (b *Broadcaster) Draft() Draft { return b.draft }

// Send validates the form and builds the announcement. On failure the draft
// keeps the submitted values and nothing is built.
func (b *Broadcaster) Send(ctx context.Context, title, message, typ string) (directory.Announcement, notify.Notification, error) {
	b.draft = Draft{Title: title, Message: message, Type: typ}

	if err := Validate(title, message); err != nil {
		n := notify.Error("Please fill in all fields", "").For(b.senderID)
		b.notifier.Notify(ctx, n)
		return directory.Announcement{}, n, err
	}
	kind, err := directory.ParseAnnouncementType(typ)
	if err != nil {
		return directory.Announcement{}, notify.Notification{}, err
	}

	a := directory.Announcement{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Message:   strings.TrimSpace(message),
		Type:      kind,
		Timestamp: b.clock.Now().UTC(),
	}
	b.draft = Draft{}

	n := notify.Success("Announcement sent!", "All users have been notified.").For(b.senderID)
	b.notifier.Notify(ctx, n)
	b.logger.Info("announcement sent", slog.String("announcement_id", a.ID), slog.String("type", string(a.Type)))
	return a, n, nil
}
