// Package directory is the read-only catalog of users, routes, students,
// announcements and geocoded stops that every dashboard reads from.
package directory

// Store is an immutable catalog. Accessors return copies so callers can
// mutate their results without touching the catalog.
type Store struct {
	users         []Identity
	routes        []Route
	students      []StudentRecord
	announcements []Announcement
	stops         []GeoStop
}

// New builds a Store from the given records, copying every slice.
func New(users []Identity, routes []Route, students []StudentRecord, announcements []Announcement, stops []GeoStop) *Store {
	s := &Store{
		users:         append([]Identity(nil), users...),
		students:      append([]StudentRecord(nil), students...),
		announcements: append([]Announcement(nil), announcements...),
		stops:         append([]GeoStop(nil), stops...),
	}
	s.routes = make([]Route, len(routes))
	for i, r := range routes {
		s.routes[i] = r.clone()
	}
	return s
}

// FindByCredentials returns the first user, in catalog order, whose username
// and password both match exactly.
func (s *Store) FindByCredentials(username, password string) (Identity, bool) {
	for _, u := range s.users {
		if u.Username == username && u.Password == password {
			return u, true
		}
	}
	return Identity{}, false
}

// User returns the user with the given id.
func (s *Store) User(id string) (Identity, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return Identity{}, false
}

func (s *Store) Users() []Identity {
	return append([]Identity(nil), s.users...)
}

func (s *Store) Routes() []Route {
	out := make([]Route, len(s.routes))
	for i, r := range s.routes {
		out[i] = r.clone()
	}
	return out
}

// Route looks up a route by id.
func (s *Store) Route(id string) (Route, bool) {
	for _, r := range s.routes {
		if r.RouteID == id {
			return r.clone(), true
		}
	}
	return Route{}, false
}

// DefaultRoute is the first route of the catalog, the one dashboards open on.
func (s *Store) DefaultRoute() (Route, bool) {
	if len(s.routes) == 0 {
		return Route{}, false
	}
	return s.routes[0].clone(), true
}

func (s *Store) Students() []StudentRecord {
	return append([]StudentRecord(nil), s.students...)
}

func (s *Store) Announcements() []Announcement {
	return append([]Announcement(nil), s.announcements...)
}

func (s *Store) Stops() []GeoStop {
	return append([]GeoStop(nil), s.stops...)
}
