package directory

import "time"

// CampusCenter is the map centre used for route maps.
var CampusCenter = GeoStop{Name: "NUST", Lat: -20.1518, Lng: 28.5945}

// Seed returns the built-in catalog. Announcement timestamps are relative to now.
func Seed(now time.Time) *Store {
	return New(seedUsers(), seedRoutes(), seedStudents(), seedAnnouncements(now), seedStops())
}

func seedUsers() []Identity {
	return []Identity{
		{ID: "1", Username: "student01", Password: "password123", Role: RoleStudent, Name: "Takudzwa Shereni", Email: "takudzwashereni@students.nust.ac.zw"},
		{ID: "2", Username: "driver01", Password: "password123", Role: RoleDriver, Name: "Blessing Musarara", Email: "blessing.musarara@nust.ac.zw"},
		{ID: "3", Username: "admin01", Password: "password123", Role: RoleAdmin, Name: "Tadiwa Musoro", Email: "tadiwa.musoro@nust.ac.zw"},
	}
}

func seedRoutes() []Route {
	return []Route{
		{
			RouteID:          "R1",
			BusNumber:        "Bus 12",
			Stops:            []string{"Main Gate", "Library", "Dormitory A", "Sports Complex", "Engineering Block"},
			Driver:           "driver01",
			DepartureTime:    "07:30",
			Status:           StatusActive,
			Capacity:         45,
			CurrentOccupancy: 32,
		},
		{
			RouteID:          "R2",
			BusNumber:        "Bus 08",
			Stops:            []string{"City Center", "Shopping Mall", "Main Gate", "Admin Block", "Cafeteria"},
			DepartureTime:    "08:00",
			Status:           StatusActive,
			Capacity:         50,
			CurrentOccupancy: 28,
		},
		{
			RouteID:          "R3",
			BusNumber:        "Bus 15",
			Stops:            []string{"North Suburbs", "Hospital", "Main Gate", "Library", "Science Block"},
			DepartureTime:    "07:45",
			Status:           StatusDelayed,
			Capacity:         40,
			CurrentOccupancy: 35,
		},
		{
			RouteID:          "R4",
			BusNumber:        "Bus 20",
			Stops:            []string{"Walk-in Gate", "Train Station", "Main Gate", "Student Residence"},
			DepartureTime:    "08:15",
			Status:           StatusActive,
			Capacity:         35,
			CurrentOccupancy: 20,
		},
	}
}

func seedStudents() []StudentRecord {
	return []StudentRecord{
		{ID: "S001", Name: "Takudzwa Shereni", StudentNumber: "N02531260W", RouteID: "R1", Confirmed: true},
		{ID: "S002", Name: "Jane Smith", StudentNumber: "N01234568", RouteID: "R1", Confirmed: true},
		{ID: "S003", Name: "Peter Brown", StudentNumber: "N01234569", RouteID: "R1"},
		{ID: "S004", Name: "Mary Johnson", StudentNumber: "N01234570", RouteID: "R1", Confirmed: true},
		{ID: "S005", Name: "David Wilson", StudentNumber: "N01234571", RouteID: "R1", Confirmed: true, PickedUp: true},
		{ID: "S006", Name: "Emma Davis", StudentNumber: "N01234572", RouteID: "R1", Confirmed: true, PickedUp: true},
		{ID: "S007", Name: "James Miller", StudentNumber: "N01234573", RouteID: "R1"},
		{ID: "S008", Name: "Lisa Anderson", StudentNumber: "N01234574", RouteID: "R1", Confirmed: true},
	}
}

func seedAnnouncements(now time.Time) []Announcement {
	now = now.UTC()
	return []Announcement{
		{
			ID:        "A001",
			Title:     "Route R3 Delay",
			Message:   "Bus 15 will be delayed by 15 minutes due to traffic congestion.",
			Type:      AnnouncementWarning,
			Timestamp: now.Add(-30 * time.Minute),
		},
		{
			ID:        "A002",
			Title:     "New Route Added",
			Message:   "A new route (R5) has been added serving the East Campus area.",
			Type:      AnnouncementInfo,
			Timestamp: now.Add(-2 * time.Hour),
		},
		{
			ID:        "A003",
			Title:     "Maintenance Notice",
			Message:   "Bus 12 will undergo routine maintenance this weekend.",
			Type:      AnnouncementInfo,
			Timestamp: now.Add(-5 * time.Hour),
		},
	}
}

func seedStops() []GeoStop {
	return []GeoStop{
		{Name: "Main Gate", Lat: -20.1645, Lng: 28.6400},
		{Name: "Library", Lat: -20.1528, Lng: 28.5955},
		{Name: "Dormitory A", Lat: -20.1538, Lng: 28.5965},
		{Name: "Sports Complex", Lat: -20.1548, Lng: 28.5975},
		{Name: "Engineering Block", Lat: -20.1558, Lng: 28.5985},
		{Name: "City Center", Lat: -20.1395, Lng: 28.5878},
		{Name: "Shopping Mall", Lat: -20.1450, Lng: 28.5910},
		{Name: "Admin Block", Lat: -20.1520, Lng: 28.5950},
		{Name: "Cafeteria", Lat: -20.1525, Lng: 28.5960},
		{Name: "North Suburbs", Lat: -20.1300, Lng: 28.5900},
		{Name: "Hospital", Lat: -20.1400, Lng: 28.5920},
		{Name: "Science Block", Lat: -20.1530, Lng: 28.5970},
		{Name: "West End", Lat: -20.1500, Lng: 28.5800},
		{Name: "Train Station", Lat: -20.1480, Lng: 28.5850},
		{Name: "Dormitory B", Lat: -20.1535, Lng: 28.5980},
	}
}
