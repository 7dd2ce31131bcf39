// Package attendance tracks a driver's pickup roster for the selected route.
package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"campusride/internal/directory"
	"campusride/internal/logging"
	"campusride/internal/notify"
)

// View is the roster for the selected route with its counters.
type View struct {
	Route          directory.Route           `json:"route"`
	Students       []directory.StudentRecord `json:"students"`
	ConfirmedCount int                       `json:"confirmed_count"`
	PickedUpCount  int                       `json:"picked_up_count"`
}

// Filter returns the confirmed students booked on routeID, in input order.
func Filter(students []directory.StudentRecord, routeID string) []directory.StudentRecord {
	out := make([]directory.StudentRecord, 0, len(students))
	for _, s := range students {
		if s.Confirmed && s.RouteID == routeID {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the roster size and how many on it were picked up.
func Count(roster []directory.StudentRecord) (confirmed, pickedUp int) {
	for _, s := range roster {
		if s.PickedUp {
			pickedUp++
		}
	}
	return len(roster), pickedUp
}

// Roster holds the session's copy of the student records. Pickup flags live
// only as long as the Roster and survive route switches.
type Roster struct {
	dir      *directory.Store
	students []directory.StudentRecord
	selected directory.Route
	driverID string
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewRoster starts on the catalog's first route.
func NewRoster(dir *directory.Store, driverID string, notifier notify.Notifier, logger *slog.Logger) *Roster {
	r := &Roster{
		dir:      dir,
		students: dir.Students(),
		driverID: driverID,
		notifier: notify.OrDiscard(notifier),
		logger:   logging.OrDiscard(logger).With(slog.String("user_id", driverID)),
	}
	if route, ok := dir.DefaultRoute(); ok {
		r.selected = route
	}
	return r
}

// SelectedRoute returns the route the roster is filtered on.
func (r *Roster) SelectedRoute() directory.Route { return r.selected }

// SelectRoute switches the roster to routeID and emits the booking notification.
func (r *Roster) SelectRoute(ctx context.Context, routeID string) (View, notify.Notification, error) {
	route, ok := r.dir.Route(routeID)
	if !ok {
		return View{}, notify.Notification{}, fmt.Errorf("select route %q: %w", routeID, directory.ErrRouteNotFound)
	}
	r.selected = route

	n := notify.Success("Route booked successfully!", fmt.Sprintf("You have been assigned to %s", route.BusNumber)).For(r.driverID)
	r.notifier.Notify(ctx, n)
	r.logger.Info("route selected", slog.String("route_id", route.RouteID))
	return r.View(), n, nil
}

// MarkPickup sets the pickup flag of a student by id, whether or not the
// student is on the current roster. Unknown ids change nothing.
func (r *Roster) MarkPickup(ctx context.Context, studentID string, picked bool) notify.Notification {
	found := false
	for i := range r.students {
		if r.students[i].ID == studentID {
			r.students[i].PickedUp = picked
			found = true
			break
		}
	}
	if !found {
		r.logger.Debug("pickup for unknown student", slog.String("student_id", studentID))
	}

	title := "Student pickup cancelled"
	if picked {
		title = "Student marked as picked up"
	}
	n := notify.Success(title, "Attendance updated successfully").For(r.driverID)
	r.notifier.Notify(ctx, n)
	return n
}

// View recomputes the roster and its counters.
func (r *Roster) View() View {
	students := Filter(r.students, r.selected.RouteID)
	confirmed, picked := Count(students)
	return View{
		Route:          r.selected,
		Students:       students,
		ConfirmedCount: confirmed,
		PickedUpCount:  picked,
	}
}
