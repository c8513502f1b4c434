package gtfs

// Data represents the parsed GTFS files the importer needs
type Data struct {
	Stops         []Stop
	Trips         []Trip
	StopTimes     []StopTime
	Calendars     []Calendar
	CalendarDates []CalendarDate
}

// Stop represents a stop from stops.txt
type Stop struct {
	StopID   string
	StopName string
	StopLat  float64
	StopLon  float64
}

// Trip represents a trip from trips.txt
type Trip struct {
	RouteID   string
	ServiceID string
	TripID    string
}

// StopTime represents a row from stop_times.txt. ArrivalSeconds is
// seconds since midnight of the service date (values past 86400 mean the
// trip runs over midnight).
type StopTime struct {
	TripID         string
	StopID         string
	StopSequence   int
	ArrivalSeconds int
}

// Calendar represents a weekly service pattern from calendar.txt
type Calendar struct {
	ServiceID string
	Weekdays  [7]bool // indexed by time.Weekday (Sunday = 0)
	StartDate string  // YYYYMMDD
	EndDate   string  // YYYYMMDD
}

// CalendarDate represents a service exception from calendar_dates.txt
type CalendarDate struct {
	ServiceID     string
	Date          string // YYYYMMDD
	ExceptionType int    // 1 = added, 2 = removed
}
