// Package dashboard maps a session to exactly one role view.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campusride/internal/announcement"
	"campusride/internal/attendance"
	"campusride/internal/availability"
	"campusride/internal/clock"
	"campusride/internal/directory"
	"campusride/internal/logging"
	"campusride/internal/notify"
	"campusride/internal/session"
)

// ErrUnknownRole means the identity carries a role outside the closed set.
// It is an internal consistency failure, never a dashboard.
var ErrUnknownRole = errors.New("unknown role")

// Deps are the collaborators shared by all views.
type Deps struct {
	Directory *directory.Store
	Clock     clock.Clock
	Notifier  notify.Notifier
	Logger    *slog.Logger
}

// View is one of StudentView, DriverView or AdminView.
type View interface {
	Identity() directory.Identity
	Summary() Summary
}

// Summary is the JSON shape of a dispatched view.
type Summary struct {
	Role    directory.Role     `json:"role"`
	User    directory.Identity `json:"user"`
	Student *StudentSummary    `json:"student,omitempty"`
	Driver  *attendance.View   `json:"driver,omitempty"`
	Admin   *AdminSummary      `json:"admin,omitempty"`
}

type StudentSummary struct {
	Route         directory.Route          `json:"route"`
	Announcements []directory.Announcement `json:"announcements"`
	Availability  availability.State       `json:"availability"`
}

type AdminSummary struct {
	Analytics     directory.Analytics      `json:"analytics"`
	Announcements []directory.Announcement `json:"announcements"`
	Draft         announcement.Draft       `json:"draft"`
}

// Dispatch builds the view for the session's role.
func Dispatch(ctx context.Context, sess *session.Session, deps Deps) (View, error) {
	id := sess.Identity
	logger := logging.OrDiscard(deps.Logger)

	switch id.Role {
	case directory.RoleStudent:
		v := &StudentView{
			identity:      id,
			announcements: deps.Directory.Announcements(),
			Availability:  availability.Load(ctx, sess.KV, id.ID, deps.Notifier, logger),
		}
		v.route, _ = deps.Directory.DefaultRoute()
		return v, nil
	case directory.RoleDriver:
		return &DriverView{
			identity: id,
			Roster:   attendance.NewRoster(deps.Directory, id.ID, deps.Notifier, logger),
		}, nil
	case directory.RoleAdmin:
		return &AdminView{
			identity:    id,
			dir:         deps.Directory,
			Broadcaster: announcement.NewBroadcaster(deps.Clock, id.ID, deps.Notifier, logger),
		}, nil
	}
	return nil, fmt.Errorf("dispatch user %s: %w: %v", id.ID, ErrUnknownRole, id.Role)
}

// StudentView shows the student's route, announcements and availability.
type StudentView struct {
	identity      directory.Identity
	route         directory.Route
	announcements []directory.Announcement
	Availability  *availability.Controller
}

func (v *StudentView) Identity() directory.Identity { return v.identity }

func (v *StudentView) Summary() Summary {
	return Summary{
		Role: directory.RoleStudent,
		User: v.identity,
		Student: &StudentSummary{
			Route:         v.route,
			Announcements: v.announcements,
			Availability:  v.Availability.State(),
		},
	}
}

// DriverView holds the pickup roster.
type DriverView struct {
	identity directory.Identity
	Roster   *attendance.Roster
}

func (v *DriverView) Identity() directory.Identity { return v.identity }

func (v *DriverView) Summary() Summary {
	roster := v.Roster.View()
	return Summary{Role: directory.RoleDriver, User: v.identity, Driver: &roster}
}

// AdminView shows analytics and the announcement composer.
type AdminView struct {
	identity    directory.Identity
	dir         *directory.Store
	Broadcaster *announcement.Broadcaster
}

func (v *AdminView) Identity() directory.Identity { return v.identity }

func (v *AdminView) Summary() Summary {
	return Summary{
		Role: directory.RoleAdmin,
		User: v.identity,
		Admin: &AdminSummary{
			Analytics:     v.dir.Analytics(),
			Announcements: v.dir.Announcements(),
			Draft:         v.Broadcaster.Draft(),
		},
	}
}
