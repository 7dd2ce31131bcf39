// Package availability holds a student's daily opt-in flag.
package availability

import (
	"context"
	"errors"
	"log/slog"

	"campusride/internal/logging"
	"campusride/internal/notify"
	"campusride/internal/store"
)

var (
	// ErrNotConfirmed is returned when cancellation is requested without a
	// prior confirmation.
	ErrNotConfirmed = errors.New("availability not confirmed")
	// ErrCancelNotRequested is returned when Cancel runs without an open prompt.
	ErrCancelNotRequested = errors.New("cancellation not requested")
)

// State is the availability flag plus the volatile cancel prompt.
type State struct {
	Confirmed     bool `json:"confirmed"`
	CancelPending bool `json:"cancel_pending"`
}

// Confirm marks the student available. Confirming twice yields the same state.
func Confirm(State) State {
	return State{Confirmed: true}
}

// RequestCancel opens the cancellation prompt.
func RequestCancel(s State) (State, error) {
	if !s.Confirmed {
		return s, ErrNotConfirmed
	}
	s.CancelPending = true
	return s, nil
}

// AbortCancel dismisses the prompt without touching the flag.
func AbortCancel(s State) State {
	s.CancelPending = false
	return s
}

// Cancel clears the flag. Only a pending prompt can be turned into a cancellation.
func Cancel(s State) (State, error) {
	if !s.CancelPending {
		return s, ErrCancelNotRequested
	}
	return State{}, nil
}

// Controller applies the transitions for one student and persists the flag
// under availability_<userID>.
type Controller struct {
	kv       store.KV
	notifier notify.Notifier
	logger   *slog.Logger
	userID   string
	state    State
}

// Load reads the persisted flag. Absent, unreadable or invalid values mean
// not confirmed.
func Load(ctx context.Context, kv store.KV, userID string, notifier notify.Notifier, logger *slog.Logger) *Controller {
	c := &Controller{
		kv:       kv,
		notifier: notify.OrDiscard(notifier),
		logger:   logging.OrDiscard(logger).With(slog.String("user_id", userID)),
		userID:   userID,
	}

	raw, err := kv.Get(ctx, store.AvailabilityKey(userID))
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		c.logger.Warn("availability read failed", slog.Any("error", err))
	default:
		if v, err := store.ParseFlag(raw); err == nil {
			c.state.Confirmed = v
		} else {
			c.logger.Debug("ignoring invalid availability value", slog.String("value", raw))
		}
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Confirmed reports whether the student is on today's route.
func (c *Controller) Confirmed() bool { return c.state.Confirmed }

// Confirm sets the flag, persists it and emits the confirmation.
func (c *Controller) Confirm(ctx context.Context) notify.Notification {
	c.state = Confirm(c.state)
	c.persist(ctx)

	n := notify.Success("Availability confirmed!", "You have been added to the route for today.").For(c.userID)
	c.notifier.Notify(ctx, n)
	c.logger.Info("availability confirmed")
	return n
}

// RequestCancel opens the two-step cancellation prompt.
func (c *Controller) RequestCancel() error {
	s, err := RequestCancel(c.state)
	if err != nil {
		return err
	}
	c.state = s
	return nil
}

// AbortCancel dismisses an open prompt.
func (c *Controller) AbortCancel() {
	c.state = AbortCancel(c.state)
}

// Cancel clears the flag once the prompt is open.
func (c *Controller) Cancel(ctx context.Context) (notify.Notification, error) {
	s, err := Cancel(c.state)
	if err != nil {
		return notify.Notification{}, err
	}
	c.state = s
	c.persist(ctx)

	n := notify.Info("Availability cancelled", "You have been removed from the route for today.").For(c.userID)
	c.notifier.Notify(ctx, n)
	c.logger.Info("availability cancelled")
	return n, nil
}

func (c *Controller) persist(ctx context.Context) {
	if err := c.kv.Set(ctx, store.AvailabilityKey(c.userID), store.FormatFlag(c.state.Confirmed)); err != nil {
		c.logger.Warn("availability persist failed", slog.Any("error", err))
	}
}
