package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusride/internal/notify"
	"campusride/internal/store"
	"campusride/internal/store/storetest"
)

func TestTransitions(t *testing.T) {
	s := Confirm(State{})
	assert.Equal(t, State{Confirmed: true}, s)
	assert.Equal(t, s, Confirm(s))

	_, err := RequestCancel(State{})
	assert.ErrorIs(t, err, ErrNotConfirmed)

	_, err = Cancel(s)
	assert.ErrorIs(t, err, ErrCancelNotRequested)

	pending, err := RequestCancel(s)
	require.NoError(t, err)
	assert.True(t, pending.CancelPending)
	assert.Equal(t, s, AbortCancel(pending))

	done, err := Cancel(pending)
	require.NoError(t, err)
	assert.Equal(t, State{}, done)
}

func TestLoadInitial(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		set    bool
		want   bool
	}{
		{"absent", "", false, false},
		{"true", "true", true, true},
		{"false", "false", true, false},
		{"garbage", "yes please", true, false},
		{"json", `{"confirmed":true}`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := store.NewMemory()
			if tt.set {
				require.NoError(t, kv.Set(ctx, store.AvailabilityKey("1"), tt.stored))
			}
			assert.Equal(t, tt.want, Load(ctx, kv, "1", nil, nil).Confirmed())
		})
	}
}

func TestLoadIsPerUser(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, store.AvailabilityKey("1"), "true"))

	assert.True(t, Load(ctx, kv, "1", nil, nil).Confirmed())
	assert.False(t, Load(ctx, kv, "2", nil, nil).Confirmed())
}

func TestConfirmIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	rec := &notify.Recorder{}
	c := Load(ctx, kv, "1", rec, nil)

	n := c.Confirm(ctx)
	c.Confirm(ctx)

	assert.True(t, c.Confirmed())
	assert.Equal(t, "Availability confirmed!", n.Title)
	assert.Equal(t, "You have been added to the route for today.", n.Description)
	assert.Equal(t, notify.LevelSuccess, n.Level)
	assert.Len(t, rec.All(), 2)

	v, err := kv.Get(ctx, store.AvailabilityKey("1"))
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}

func TestCancelRequiresPrompt(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	rec := &notify.Recorder{}
	c := Load(ctx, kv, "1", rec, nil)

	assert.ErrorIs(t, c.RequestCancel(), ErrNotConfirmed)

	c.Confirm(ctx)
	_, err := c.Cancel(ctx)
	assert.ErrorIs(t, err, ErrCancelNotRequested)
	assert.True(t, c.Confirmed())

	require.NoError(t, c.RequestCancel())
	c.AbortCancel()
	_, err = c.Cancel(ctx)
	assert.ErrorIs(t, err, ErrCancelNotRequested)
	assert.True(t, c.Confirmed())

	require.NoError(t, c.RequestCancel())
	assert.True(t, c.State().CancelPending)
	n, err := c.Cancel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Availability cancelled", n.Title)
	assert.Equal(t, notify.LevelInfo, n.Level)
	assert.False(t, c.Confirmed())
	assert.False(t, c.State().CancelPending)

	v, err := kv.Get(ctx, store.AvailabilityKey("1"))
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	// one confirm and one cancel
	assert.Len(t, rec.All(), 2)
}

func TestStorageFailureKeepsWorking(t *testing.T) {
	ctx := context.Background()
	kv := storetest.NewFlaky()
	kv.FailGet = true
	kv.FailSet = true

	c := Load(ctx, kv, "1", nil, nil)
	assert.False(t, c.Confirmed())

	c.Confirm(ctx)
	assert.True(t, c.Confirmed())

	require.NoError(t, c.RequestCancel())
	_, err := c.Cancel(ctx)
	require.NoError(t, err)
	assert.False(t, c.Confirmed())
}
