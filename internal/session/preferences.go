package session

import (
	"context"
	"errors"
	"log/slog"

	"campusride/internal/logging"
	"campusride/internal/store"
)

// Preferences holds browser-wide settings. They outlive sessions and are
// not touched by logout.
type Preferences struct {
	kv       store.KV
	logger   *slog.Logger
	darkMode bool
}

// LoadPreferences reads the stored preferences. Absent or unparsable values
// fall back to defaults.
func LoadPreferences(ctx context.Context, kv store.KV, logger *slog.Logger) *Preferences {
	p := &Preferences{kv: kv, logger: logging.OrDiscard(logger)}

	raw, err := kv.Get(ctx, store.KeyDarkMode)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		p.logger.Warn("dark mode read failed", slog.Any("error", err))
	default:
		if v, err := store.ParseFlag(raw); err == nil {
			p.darkMode = v
		} else {
			p.logger.Debug("ignoring unparsable dark mode value", slog.String("value", raw))
		}
	}
	return p
}

// DarkMode reports the current theme preference.
func (p *Preferences) DarkMode() bool { return p.darkMode }

// ToggleDarkMode flips the preference and persists the new value.
func (p *Preferences) ToggleDarkMode(ctx context.Context) bool {
	p.darkMode = !p.darkMode
	if err := p.kv.Set(ctx, store.KeyDarkMode, store.FormatFlag(p.darkMode)); err != nil {
		p.logger.Warn("dark mode persist failed", slog.Any("error", err))
	}
	return p.darkMode
}
