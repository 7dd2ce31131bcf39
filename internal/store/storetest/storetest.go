// Package storetest provides KV doubles for tests.
package storetest

import (
	"context"
	"errors"

	"campusride/internal/store"
)

// ErrUnavailable is returned by a Flaky store for disabled operations.
var ErrUnavailable = errors.New("storage unavailable")

// Flaky wraps a KV and fails the operations switched off.
type Flaky struct {
	store.KV
	FailGet    bool
	FailSet    bool
	FailDelete bool
}

// NewFlaky wraps a fresh in-memory store.
func NewFlaky() *Flaky {
	return &Flaky{KV: store.NewMemory()}
}

func (f *Flaky) Get(ctx context.Context, key string) (string, error) {
	if f.FailGet {
		return "", ErrUnavailable
	}
	return f.KV.Get(ctx, key)
}

func (f *Flaky) Set(ctx context.Context, key, value string) error {
	if f.FailSet {
		return ErrUnavailable
	}
	return f.KV.Set(ctx, key, value)
}

func (f *Flaky) Delete(ctx context.Context, keys ...string) error {
	if f.FailDelete {
		return ErrUnavailable
	}
	return f.KV.Delete(ctx, keys...)
}
