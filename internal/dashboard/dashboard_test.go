package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusride/internal/directory"
	"campusride/internal/session"
	"campusride/internal/store"
)

func deps() Deps {
	return Deps{Directory: directory.Seed(time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC))}
}

func login(t *testing.T, d Deps, kv store.KV, username string) *session.Session {
	t.Helper()
	s, _, err := session.NewManager(d.Directory, kv, nil, nil).Login(context.Background(), username, "password123")
	require.NoError(t, err)
	return s
}

func TestDispatchByRole(t *testing.T) {
	d := deps()
	ctx := context.Background()

	tests := []struct {
		username string
		check    func(t *testing.T, v View)
	}{
		{"student01", func(t *testing.T, v View) {
			_, ok := v.(*StudentView)
			assert.True(t, ok)
		}},
		{"driver01", func(t *testing.T, v View) {
			_, ok := v.(*DriverView)
			assert.True(t, ok)
		}},
		{"admin01", func(t *testing.T, v View) {
			_, ok := v.(*AdminView)
			assert.True(t, ok)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			sess := login(t, d, store.NewMemory(), tt.username)
			v, err := Dispatch(ctx, sess, d)
			require.NoError(t, err)
			tt.check(t, v)
			assert.Equal(t, sess.Identity, v.Identity())
			assert.Equal(t, sess.Identity.Role, v.Summary().Role)
		})
	}
}

func TestDispatchUnknownRole(t *testing.T) {
	for _, role := range []directory.Role{0, 7} {
		sess := &session.Session{Identity: directory.Identity{ID: "x", Role: role}, KV: store.NewMemory()}
		v, err := Dispatch(context.Background(), sess, deps())
		assert.ErrorIs(t, err, ErrUnknownRole)
		assert.Nil(t, v)
	}
}

func TestStudentSummary(t *testing.T) {
	ctx := context.Background()
	d := deps()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, store.AvailabilityKey("1"), "true"))

	v, err := Dispatch(ctx, login(t, d, kv, "student01"), d)
	require.NoError(t, err)

	sum := v.Summary()
	require.NotNil(t, sum.Student)
	assert.Nil(t, sum.Driver)
	assert.Nil(t, sum.Admin)
	assert.Equal(t, "R1", sum.Student.Route.RouteID)
	assert.Len(t, sum.Student.Announcements, 3)
	assert.True(t, sum.Student.Availability.Confirmed)
}

func TestDriverSummary(t *testing.T) {
	d := deps()
	v, err := Dispatch(context.Background(), login(t, d, store.NewMemory(), "driver01"), d)
	require.NoError(t, err)

	sum := v.Summary()
	require.NotNil(t, sum.Driver)
	assert.Equal(t, 6, sum.Driver.ConfirmedCount)
	assert.Equal(t, 2, sum.Driver.PickedUpCount)
}

func TestAdminSummary(t *testing.T) {
	d := deps()
	v, err := Dispatch(context.Background(), login(t, d, store.NewMemory(), "admin01"), d)
	require.NoError(t, err)

	admin := v.(*AdminView)
	_, _, _ = admin.Broadcaster.Send(context.Background(), "Draft title", "", "alert")

	sum := v.Summary()
	require.NotNil(t, sum.Admin)
	assert.Equal(t, 68, sum.Admin.Analytics.AverageOccupancy)
	assert.Equal(t, "Draft title", sum.Admin.Draft.Title)

	b, err := json.Marshal(sum)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"role":"admin"`)
	assert.NotContains(t, string(b), `"student"`)
}
