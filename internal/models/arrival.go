package models

import "time"

// ScheduledArrival is one timetabled arrival at a stop, derived from the
// static GTFS data for the active service date.
type ScheduledArrival struct {
	TripID    string
	StopID    string
	RouteID   string
	Scheduled time.Time
}

// ArrivalCandidate is the next plausible real-time arrival for a stop,
// reduced from one GTFS-RT feed snapshot. At most one survives per request.
type ArrivalCandidate struct {
	TripID    string
	StartDate string // service date from the feed, YYYYMMDD
	Estimated time.Time
	Delay     *int // seconds; nil when the feed omits it
}

// ScheduledStopTime is a raw timetable row: a trip's arrival at a stop
// expressed in seconds since midnight of the service date. GTFS allows
// values past 86400 for trips running over midnight.
type ScheduledStopTime struct {
	TripID         string
	ArrivalSeconds int
}

// StatusResponse is the JSON body returned for a successful status check.
type StatusResponse struct {
	Status        string       `json:"status"`
	ScheduledTime *int64       `json:"scheduledTime,omitempty"`
	EstimatedTime *int64       `json:"estimatedTime,omitempty"`
	Delay         *int         `json:"delay,omitempty"`
	Keyword       string       `json:"keyword,omitempty"`
	Nearest       *NearestStop `json:"nearest,omitempty"`
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string       `json:"error"`
	Nearest *NearestStop `json:"nearest,omitempty"`
}
