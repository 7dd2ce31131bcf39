package directory

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidRole is returned when a role name is outside student/driver/admin.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidAnnouncementType is returned for a type outside info/warning/alert.
	ErrInvalidAnnouncementType = errors.New("invalid announcement type")
	// ErrRouteNotFound is returned when a route id has no catalog entry.
	ErrRouteNotFound = errors.New("route not found")
)

// Role is the closed set of dashboard roles. The zero value is not a role.
type Role uint8

const (
	RoleStudent Role = iota + 1
	RoleDriver
	RoleAdmin
)

// Roles lists every valid role in declaration order.
var Roles = []Role{RoleStudent, RoleDriver, RoleAdmin}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleDriver:
		return "driver"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Valid reports whether r is one of the three declared roles.
func (r Role) Valid() bool {
	return r >= RoleStudent && r <= RoleAdmin
}

// ParseRole maps a role name to its Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "student":
		return RoleStudent, nil
	case "driver":
		return RoleDriver, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// MarshalText encodes the role name; invalid roles fail to encode.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Identity is a directory user. Password never leaves the process in JSON.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// RouteStatus is the operating state of a route.
type RouteStatus string

const (
	StatusActive    RouteStatus = "active"
	StatusDelayed   RouteStatus = "delayed"
	StatusCancelled RouteStatus = "cancelled"
)

// RouteStatuses lists every status in display order.
var RouteStatuses = []RouteStatus{StatusActive, StatusDelayed, StatusCancelled}

// Route is a bus line. Stops are in visit order.
type Route struct {
	RouteID          string      `json:"route_id"`
	BusNumber        string      `json:"bus_number"`
	Stops            []string    `json:"stops"`
	Driver           string      `json:"driver,omitempty"`
	DepartureTime    string      `json:"departure_time"`
	Status           RouteStatus `json:"status"`
	Capacity         int         `json:"capacity"`
	CurrentOccupancy int         `json:"current_occupancy"`
}

func (r Route) clone() Route {
	r.Stops = append([]string(nil), r.Stops...)
	return r
}

// StudentRecord is a rider on a route. Confirmed and PickedUp are independent.
type StudentRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StudentNumber string `json:"student_number"`
	RouteID       string `json:"route"`
	Confirmed     bool   `json:"confirmed"`
	PickedUp      bool   `json:"picked_up"`
}

// AnnouncementType is the severity of an announcement.
type AnnouncementType string

const (
	AnnouncementInfo    AnnouncementType = "info"
	AnnouncementWarning AnnouncementType = "warning"
	AnnouncementAlert   AnnouncementType = "alert"
)

// ParseAnnouncementType accepts info, warning and alert. An empty value means info.
func ParseAnnouncementType(s string) (AnnouncementType, error) {
	switch t := AnnouncementType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return AnnouncementInfo, nil
	case AnnouncementInfo, AnnouncementWarning, AnnouncementAlert:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAnnouncementType, s)
}

// Announcement is an immutable broadcast message.
type Announcement struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      AnnouncementType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
}

// GeoStop is a named bus stop with coordinates. Name joins to Route.Stops.
type GeoStop struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}
