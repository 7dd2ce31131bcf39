package directory

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

var seedTime = time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)

func TestSeedCatalog(t *testing.T) {
	s := Seed(seedTime)

	assert.Len(t, s.Users(), 3)
	assert.Len(t, s.Routes(), 4)
	assert.Len(t, s.Students(), 8)
	assert.Len(t, s.Announcements(), 3)
	assert.Len(t, s.Stops(), 15)

	ann := s.Announcements()
	assert.Equal(t, seedTime.Add(-30*time.Minute), ann[0].Timestamp)
	assert.Equal(t, AnnouncementWarning, ann[0].Type)
	assert.Equal(t, seedTime.Add(-5*time.Hour), ann[2].Timestamp)
}

func TestFindByCredentials(t *testing.T) {
	s := Seed(seedTime)

	tests := []struct {
		name     string
		username string
		password string
		wantID   string
		wantOK   bool
	}{
		{"student", "student01", "password123", "1", true},
		{"driver", "driver01", "password123", "2", true},
		{"admin", "admin01", "password123", "3", true},
		{"wrong password", "student01", "wrongpass", "", false},
		{"unknown user", "nobody", "password123", "", false},
		{"case sensitive username", "Student01", "password123", "", false},
		{"case sensitive password", "student01", "PASSWORD123", "", false},
		{"empty", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := s.FindByCredentials(tt.username, tt.password)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestFindByCredentialsReturnsFirstMatch(t *testing.T) {
	s := New([]Identity{
		{ID: "a", Username: "dup", Password: "pw", Role: RoleDriver},
		{ID: "b", Username: "dup", Password: "pw", Role: RoleAdmin},
	}, nil, nil, nil, nil)

	u, ok := s.FindByCredentials("dup", "pw")
	require.True(t, ok)
	assert.Equal(t, "a", u.ID)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := Seed(seedTime)

	routes := s.Routes()
	routes[0].Stops[0] = "Elsewhere"
	routes[0].CurrentOccupancy = 99

	students := s.Students()
	students[0].PickedUp = true

	r1, ok := s.Route("R1")
	require.True(t, ok)
	assert.Equal(t, "Main Gate", r1.Stops[0])
	assert.Equal(t, 32, r1.CurrentOccupancy)
	assert.False(t, s.Students()[0].PickedUp)
}

func TestDefaultRoute(t *testing.T) {
	r, ok := Seed(seedTime).DefaultRoute()
	require.True(t, ok)
	assert.Equal(t, "R1", r.RouteID)

	_, ok = New(nil, nil, nil, nil, nil).DefaultRoute()
	assert.False(t, ok)
}

func TestRoleText(t *testing.T) {
	for _, r := range Roles {
		b, err := r.MarshalText()
		require.NoError(t, err)

		var back Role
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, r, back)
	}

	_, err := Role(0).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidRole)

	var r Role
	assert.ErrorIs(t, r.UnmarshalText([]byte("superuser")), ErrInvalidRole)
	assert.False(t, Role(9).Valid())
	assert.Equal(t, "role(9)", Role(9).String())
}

func TestIdentityJSONOmitsPassword(t *testing.T) {
	u, _ := Seed(seedTime).User("1")

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.Contains(t, string(b), `"role":"student"`)
}

func TestParseAnnouncementType(t *testing.T) {
	got, err := ParseAnnouncementType("")
	require.NoError(t, err)
	assert.Equal(t, AnnouncementInfo, got)

	got, err = ParseAnnouncementType("Warning")
	require.NoError(t, err)
	assert.Equal(t, AnnouncementWarning, got)

	_, err = ParseAnnouncementType("urgent")
	assert.True(t, errors.Is(err, ErrInvalidAnnouncementType))
}

func TestResolveStop(t *testing.T) {
	s := Seed(seedTime)

	st, ok := s.ResolveStop("Library")
	assert.True(t, ok)
	assert.Equal(t, -20.1528, st.Lat)

	st, ok = s.ResolveStop("Walk-in Gate")
	assert.False(t, ok)
	assert.Equal(t, "Main Gate", st.Name)

	st, ok = New(nil, nil, nil, nil, nil).ResolveStop("Library")
	assert.False(t, ok)
	assert.Equal(t, GeoStop{}, st)
}

func TestRouteMapFallsBackForUnknownStops(t *testing.T) {
	s := Seed(seedTime)

	m, err := s.RouteMap("R4")
	require.NoError(t, err)
	require.Len(t, m.Stops, 4)

	assert.Equal(t, "Walk-in Gate", m.Stops[0].RouteStop)
	assert.Equal(t, "Main Gate", m.Stops[0].Name)
	assert.False(t, m.Stops[0].Resolved)
	assert.True(t, m.Stops[1].Resolved)
	assert.Equal(t, "Train Station", m.Stops[1].Name)
	assert.False(t, m.Stops[3].Resolved)
	assert.Equal(t, 4, m.Stops[3].Sequence)
	assert.Equal(t, CampusCenter, m.Center)
}

func TestRouteMapPolylineKeepsVisitOrder(t *testing.T) {
	s := Seed(seedTime)

	m, err := s.RouteMap("R1")
	require.NoError(t, err)

	coords, _, err := polyline.DecodeCoords([]byte(m.Polyline))
	require.NoError(t, err)
	require.Len(t, coords, 5)
	for i, c := range coords {
		assert.InDelta(t, m.Stops[i].Lat, c[0], 1e-5)
		assert.InDelta(t, m.Stops[i].Lng, c[1], 1e-5)
	}
}

func TestRouteMapUnknownRoute(t *testing.T) {
	_, err := Seed(seedTime).RouteMap("R9")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestAnalytics(t *testing.T) {
	a := Seed(seedTime).Analytics()

	assert.Equal(t, 8, a.TotalStudents)
	assert.Equal(t, 4, a.TotalRoutes)
	assert.Equal(t, 3, a.ActiveRoutes)
	// (32/45 + 28/50 + 35/40 + 20/35) / 4 = 67.94%
	assert.Equal(t, 68, a.AverageOccupancy)
	assert.Equal(t, []StatusCount{
		{Status: StatusActive, Count: 3},
		{Status: StatusDelayed, Count: 1},
		{Status: StatusCancelled, Count: 0},
	}, a.StatusBreakdown)
	require.Len(t, a.RouteUsage, 4)
	assert.Equal(t, RouteUsage{RouteID: "R3", BusNumber: "Bus 15", Students: 35, Capacity: 40}, a.RouteUsage[2])
}

func TestAnalyticsEmptyCatalog(t *testing.T) {
	a := New(nil, []Route{{RouteID: "X", Status: StatusCancelled}}, nil, nil, nil).Analytics()
	assert.Equal(t, 0, a.AverageOccupancy)
	assert.Equal(t, 0, a.ActiveRoutes)

	a = New(nil, nil, nil, nil, nil).Analytics()
	assert.Equal(t, 0, a.AverageOccupancy)
	assert.Empty(t, a.RouteUsage)
}
