package models

import "errors"

// Stop is one physical stop from the timetable store, loaded once at
// startup and never mutated afterwards.
type Stop struct {
	StopID   string   `json:"stopId"`
	StopName string   `json:"stopName"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	RouteIDs []string `json:"routeIds"`
}

// ServesRoute reports whether the stop is served by the given route.
func (s *Stop) ServesRoute(routeID string) bool {
	for _, id := range s.RouteIDs {
		if id == routeID {
			return true
		}
	}
	return false
}

// Validate checks if the Stop model has valid data
func (s *Stop) Validate() error {
	if s.StopID == "" {
		return errors.New("stop_id is required")
	}
	if s.Lat < -90 || s.Lat > 90 {
		return errors.New("latitude out of range: must be between -90 and 90")
	}
	if s.Lon < -180 || s.Lon > 180 {
		return errors.New("longitude out of range: must be between -180 and 180")
	}
	return nil
}

// NearestStop describes the stop resolved for a caller's position,
// including how far away the caller is.
type NearestStop struct {
	StopID         string  `json:"stopId"`
	StopName       string  `json:"stopName"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	DistanceMeters int     `json:"distanceMeters"`
}
