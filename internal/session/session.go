// Package session authenticates users against the directory and keeps the
// current identity in the persisted key space across reloads.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"campusride/internal/directory"
	"campusride/internal/logging"
	"campusride/internal/notify"
	"campusride/internal/store"
)

var (
	// ErrInvalidCredentials does not distinguish unknown users from wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is a form error raised before authentication.
	ErrMissingCredentials = errors.New("please enter both username and password")
)

// Session is the context of one logged-in identity, handed explicitly to the
// role controllers. KV is the identity's browser-scoped store.
type Session struct {
	Identity directory.Identity
	KV       store.KV
}

// Manager owns the session lifecycle for one browser scope.
type Manager struct {
	dir      *directory.Store
	kv       store.KV
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewManager builds a Manager over a browser-scoped store.
func NewManager(dir *directory.Store, kv store.KV, notifier notify.Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		dir:      dir,
		kv:       kv,
		notifier: notify.OrDiscard(notifier),
		logger:   logging.OrDiscard(logger),
	}
}

// Authenticate matches the pair exactly against the directory.
func (m *Manager) Authenticate(username, password string) (directory.Identity, error) {
	u, ok := m.dir.FindByCredentials(username, password)
	if !ok {
		return directory.Identity{}, ErrInvalidCredentials
	}
	return u, nil
}

// Login validates the form, authenticates and persists the session. The
// returned notification has already been emitted; it is zero when the form
// was incomplete, which is reported inline instead.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, notify.Notification, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, notify.Notification{}, ErrMissingCredentials
	}

	u, err := m.Authenticate(username, password)
	if err != nil {
		n := notify.Error("Invalid credentials", "Please check your username and password")
		m.notifier.Notify(ctx, n)
		m.logger.Info("login failed", slog.String("username", username))
		return nil, n, err
	}

	m.Persist(ctx, u)
	n := notify.Success(
		fmt.Sprintf("Welcome back, %s!", u.Name),
		fmt.Sprintf("Logged in as %s", u.Role),
	).For(u.ID)
	m.notifier.Notify(ctx, n)
	m.logger.Info("login succeeded", slog.String("user_id", u.ID), slog.String("role", u.Role.String()))
	return &Session{Identity: u, KV: m.kv}, n, nil
}

// Restore reads the persisted identity. A corrupt record is removed and
// reported as no session; it never surfaces as an error.
func (m *Manager) Restore(ctx context.Context) (*Session, bool) {
	raw, err := m.kv.Get(ctx, store.KeyCurrentUser)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn("session restore read failed", slog.Any("error", err))
		}
		return nil, false
	}

	u, err := decodeIdentity(raw)
	if err != nil {
		m.logger.Warn("discarding corrupt session record", slog.Any("error", err))
		if err := m.kv.Delete(ctx, store.KeyCurrentUser); err != nil {
			m.logger.Warn("corrupt session record not removed", slog.Any("error", err))
		}
		return nil, false
	}
	return &Session{Identity: u, KV: m.kv}, true
}

// Persist writes the identity as the current user. Storage failures are
// logged and the session continues without persistence.
func (m *Manager) Persist(ctx context.Context, u directory.Identity) {
	b, err := json.Marshal(u)
	if err != nil {
		m.logger.Error("session encode failed", slog.String("user_id", u.ID), slog.Any("error", err))
		return
	}
	if err := m.kv.Set(ctx, store.KeyCurrentUser, string(b)); err != nil {
		m.logger.Warn("session persist failed", slog.String("user_id", u.ID), slog.Any("error", err))
	}
}

// Clear removes the current user and, when known, the outgoing user's
// availability flag. Clearing an empty session is a no-op.
func (m *Manager) Clear(ctx context.Context, outgoing *directory.Identity) {
	keys := []string{store.KeyCurrentUser}
	if outgoing != nil && outgoing.ID != "" {
		keys = append(keys, store.AvailabilityKey(outgoing.ID))
	}
	if err := m.kv.Delete(ctx, keys...); err != nil {
		m.logger.Warn("session clear failed", slog.Any("error", err))
	}
}

// Logout clears the session of whoever is logged in and always emits the
// logged-out notification.
func (m *Manager) Logout(ctx context.Context) notify.Notification {
	var outgoing *directory.Identity
	if s, ok := m.Restore(ctx); ok {
		outgoing = &s.Identity
	}
	m.Clear(ctx, outgoing)

	n := notify.Info("Logged out successfully", "See you next time!")
	if outgoing != nil {
		n = n.For(outgoing.ID)
		m.logger.Info("logout", slog.String("user_id", outgoing.ID))
	}
	m.notifier.Notify(ctx, n)
	return n
}

func decodeIdentity(raw string) (directory.Identity, error) {
	var u directory.Identity
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return directory.Identity{}, err
	}
	if u.ID == "" {
		return directory.Identity{}, errors.New("session record without id")
	}
	if !u.Role.Valid() {
		return directory.Identity{}, fmt.Errorf("session record for %s: %w", u.ID, directory.ErrInvalidRole)
	}
	return u, nil
}
