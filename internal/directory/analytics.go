package directory

import "math"

// StatusCount is the number of routes in one status.
type StatusCount struct {
	Status RouteStatus `json:"status"`
	Count  int         `json:"count"`
}

// RouteUsage is the occupancy of one bus.
type RouteUsage struct {
	RouteID   string `json:"route_id"`
	BusNumber string `json:"bus_number"`
	Students  int    `json:"students"`
	Capacity  int    `json:"capacity"`
}

// Analytics is the admin overview derived from the catalog.
type Analytics struct {
	TotalStudents    int           `json:"total_students"`
	TotalRoutes      int           `json:"total_routes"`
	ActiveRoutes     int           `json:"active_routes"`
	AverageOccupancy int           `json:"average_occupancy_percent"`
	StatusBreakdown  []StatusCount `json:"status_breakdown"`
	RouteUsage       []RouteUsage  `json:"route_usage"`
}

// Analytics computes the admin overview. Occupancy above capacity is
// reported as is.
func (s *Store) Analytics() Analytics {
	a := Analytics{
		TotalStudents: len(s.students),
		TotalRoutes:   len(s.routes),
		RouteUsage:    make([]RouteUsage, 0, len(s.routes)),
	}

	counts := make(map[RouteStatus]int, len(RouteStatuses))
	var occupancySum float64
	for _, r := range s.routes {
		counts[r.Status]++
		if r.Capacity > 0 {
			occupancySum += float64(r.CurrentOccupancy) / float64(r.Capacity) * 100
		}
		a.RouteUsage = append(a.RouteUsage, RouteUsage{
			RouteID:   r.RouteID,
			BusNumber: r.BusNumber,
			Students:  r.CurrentOccupancy,
			Capacity:  r.Capacity,
		})
	}

	a.ActiveRoutes = counts[StatusActive]
	for _, st := range RouteStatuses {
		a.StatusBreakdown = append(a.StatusBreakdown, StatusCount{Status: st, Count: counts[st]})
	}
	if len(s.routes) > 0 {
		a.AverageOccupancy = int(math.Floor(occupancySum/float64(len(s.routes)) + 0.5))
	}
	return a
}
