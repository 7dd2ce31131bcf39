package directory

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the directory tables when they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("directory: create schema: %w", err)
	}
	return nil
}

// SeedPostgres copies a catalog into the directory tables. Rows that already
// exist are left untouched.
func SeedPostgres(ctx context.Context, db *sql.DB, s *Store) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, u := range s.users {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO directory_users (id, ord, username, password, role, name, email)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (id) DO NOTHING
		`, u.ID, i, u.Username, u.Password, u.Role.String(), u.Name, u.Email); err != nil {
			return fmt.Errorf("directory: seed user %s: %w", u.ID, err)
		}
	}
	for i, r := range s.routes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO directory_routes (route_id, ord, bus_number, driver, departure_time, status, capacity, current_occupancy)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (route_id) DO NOTHING
		`, r.RouteID, i, r.BusNumber, r.Driver, r.DepartureTime, string(r.Status), r.Capacity, r.CurrentOccupancy); err != nil {
			return fmt.Errorf("directory: seed route %s: %w", r.RouteID, err)
		}
		for pos, stop := range r.Stops {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO directory_route_stops (route_id, position, stop_name)
				VALUES ($1,$2,$3)
				ON CONFLICT (route_id, position) DO NOTHING
			`, r.RouteID, pos, stop); err != nil {
				return fmt.Errorf("directory: seed route stop %s/%d: %w", r.RouteID, pos, err)
			}
		}
	}
	for i, st := range s.students {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO directory_students (id, ord, name, student_number, route_id, confirmed, picked_up)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (id) DO NOTHING
		`, st.ID, i, st.Name, st.StudentNumber, st.RouteID, st.Confirmed, st.PickedUp); err != nil {
			return fmt.Errorf("directory: seed student %s: %w", st.ID, err)
		}
	}
	for _, a := range s.announcements {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO directory_announcements (id, title, message, type, created_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (id) DO NOTHING
		`, a.ID, a.Title, a.Message, string(a.Type), a.Timestamp); err != nil {
			return fmt.Errorf("directory: seed announcement %s: %w", a.ID, err)
		}
	}
	for i, st := range s.stops {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO directory_stops (name, ord, lat, lng)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (name) DO NOTHING
		`, st.Name, i, st.Lat, st.Lng); err != nil {
			return fmt.Errorf("directory: seed stop %s: %w", st.Name, err)
		}
	}
	return tx.Commit()
}

// LoadPostgres reads the whole catalog from the directory tables.
func LoadPostgres(ctx context.Context, db *sql.DB) (*Store, error) {
	users, err := loadUsers(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("directory: load users: %w", err)
	}
	routes, err := loadRoutes(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("directory: load routes: %w", err)
	}
	students, err := loadStudents(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("directory: load students: %w", err)
	}
	announcements, err := loadAnnouncements(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("directory: load announcements: %w", err)
	}
	stops, err := loadStops(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("directory: load stops: %w", err)
	}
	return &Store{users: users, routes: routes, students: students, announcements: announcements, stops: stops}, nil
}

func loadUsers(ctx context.Context, db *sql.DB) ([]Identity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, username, password, role, name, email
		FROM directory_users
		ORDER BY ord
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []Identity
	for rows.Next() {
		var u Identity
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &role, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		if u.Role, err = ParseRole(role); err != nil {
			return nil, fmt.Errorf("user %s: %w", u.ID, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func loadRoutes(ctx context.Context, db *sql.DB) ([]Route, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT route_id, bus_number, driver, departure_time, status, capacity, current_occupancy
		FROM directory_routes
		ORDER BY ord
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	index := make(map[string]int)
	for rows.Next() {
		var r Route
		var status string
		if err := rows.Scan(&r.RouteID, &r.BusNumber, &r.Driver, &r.DepartureTime, &status, &r.Capacity, &r.CurrentOccupancy); err != nil {
			return nil, err
		}
		r.Status = RouteStatus(status)
		index[r.RouteID] = len(routes)
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stopRows, err := db.QueryContext(ctx, `
		SELECT route_id, stop_name
		FROM directory_route_stops
		ORDER BY route_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer stopRows.Close()
	for stopRows.Next() {
		var routeID, name string
		if err := stopRows.Scan(&routeID, &name); err != nil {
			return nil, err
		}
		if i, ok := index[routeID]; ok {
			routes[i].Stops = append(routes[i].Stops, name)
		}
	}
	return routes, stopRows.Err()
}

func loadStudents(ctx context.Context, db *sql.DB) ([]StudentRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, student_number, route_id, confirmed, picked_up
		FROM directory_students
		ORDER BY ord
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []StudentRecord
	for rows.Next() {
		var st StudentRecord
		if err := rows.Scan(&st.ID, &st.Name, &st.StudentNumber, &st.RouteID, &st.Confirmed, &st.PickedUp); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func loadAnnouncements(ctx context.Context, db *sql.DB) ([]Announcement, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, message, type, created_at
		FROM directory_announcements
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Announcement
	for rows.Next() {
		var a Announcement
		var typ string
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &typ, &a.Timestamp); err != nil {
			return nil, err
		}
		if a.Type, err = ParseAnnouncementType(typ); err != nil {
			return nil, fmt.Errorf("announcement %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func loadStops(ctx context.Context, db *sql.DB) ([]GeoStop, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, lat, lng FROM directory_stops ORDER BY ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []GeoStop
	for rows.Next() {
		var st GeoStop
		if err := rows.Scan(&st.Name, &st.Lat, &st.Lng); err != nil {
			return nil, err
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}
