package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("store: key not found")

// Keys of the persisted key space.
const (
	KeyCurrentUser = "currentUser"
	KeyDarkMode    = "darkMode"

	availabilityPrefix = "availability_"
)

// AvailabilityKey is the per-user availability flag key.
func AvailabilityKey(userID string) string {
	return availabilityPrefix + userID
}

// KV is a string key-value store with last-writer-wins semantics.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Namespaced prefixes every key before delegating to the wrapped store.
type Namespaced struct {
	kv     KV
	prefix string
}

// Namespace scopes kv under prefix.
func Namespace(kv KV, prefix string) *Namespaced {
	return &Namespaced{kv: kv, prefix: prefix}
}

// ForBrowser scopes kv to a single client, the equivalent of one browser's
// local storage.
func ForBrowser(kv KV, browserID string) *Namespaced {
	return Namespace(kv, "browser:"+strings.TrimSpace(browserID)+":")
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.prefix + k
	}
	return n.kv.Delete(ctx, full...)
}

// FormatFlag encodes a boolean flag value.
func FormatFlag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ErrInvalidFlag is returned for stored flags other than "true" or "false".
var ErrInvalidFlag = errors.New("store: invalid flag value")

// ParseFlag decodes a flag written by FormatFlag.
func ParseFlag(v string) (bool, error) {
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, ErrInvalidFlag
}
