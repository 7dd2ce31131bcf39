package directory

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// MapStop is one point of a route map. Name and coordinates come from the
// catalog stop actually used, so an unresolved stop shows the fallback stop.
type MapStop struct {
	Sequence  int     `json:"sequence"`
	RouteStop string  `json:"route_stop"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Resolved  bool    `json:"resolved"`
}

// RouteMap is the data a map widget needs to draw a route.
type RouteMap struct {
	RouteID   string    `json:"route_id"`
	BusNumber string    `json:"bus_number"`
	Center    GeoStop   `json:"center"`
	Stops     []MapStop `json:"stops"`
	Polyline  string    `json:"polyline"`
}

// ResolveStop finds the catalog stop with the given name. Unknown names
// resolve to the first catalog stop and report false. An empty catalog
// yields the zero GeoStop.
func (s *Store) ResolveStop(name string) (GeoStop, bool) {
	for _, st := range s.stops {
		if st.Name == name {
			return st, true
		}
	}
	if len(s.stops) == 0 {
		return GeoStop{}, false
	}
	return s.stops[0], false
}

// RoutePath resolves every stop of the route in visit order.
func (s *Store) RoutePath(route Route) []MapStop {
	path := make([]MapStop, 0, len(route.Stops))
	for i, name := range route.Stops {
		st, ok := s.ResolveStop(name)
		path = append(path, MapStop{
			Sequence:  i + 1,
			RouteStop: name,
			Name:      st.Name,
			Lat:       st.Lat,
			Lng:       st.Lng,
			Resolved:  ok,
		})
	}
	return path
}

// RouteMap builds the map for a route id.
func (s *Store) RouteMap(routeID string) (RouteMap, error) {
	route, ok := s.Route(routeID)
	if !ok {
		return RouteMap{}, fmt.Errorf("%w: %s", ErrRouteNotFound, routeID)
	}
	path := s.RoutePath(route)
	return RouteMap{
		RouteID:   route.RouteID,
		BusNumber: route.BusNumber,
		Center:    CampusCenter,
		Stops:     path,
		Polyline:  EncodePath(path),
	}, nil
}

// EncodePath encodes the stop coordinates as a Google encoded polyline.
func EncodePath(path []MapStop) string {
	coords := make([][]float64, len(path))
	for i, p := range path {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}
