package gtfs

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestTimeToSeconds(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"00:00:00", 0, false},
		{"10:02:00", 36120, false},
		{"23:59:59", 86399, false},
		// Trips running past midnight keep counting
		{"25:15:00", 90900, false},
		{"7:30:00", 27000, false},
		{"10:02", 0, true},
		{"10:60:00", 0, true},
		{"10:00:61", 0, true},
		{"ten:02:00", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		got, err := TimeToSeconds(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("TimeToSeconds(%q) succeeded, expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("TimeToSeconds(%q) failed: %v", tc.input, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("TimeToSeconds(%q) = %d, expected %d", tc.input, got, tc.expected)
		}
	}
}

func writeTestZip(t *testing.T, files map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gtfs.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create zip: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"3054,Test St,-27.5,153.0\n",
		"trips.txt": "route_id,service_id,trip_id\n" +
			"61-4158,SAT,trip-1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"trip-1,10:02:00,10:02:00,3054,1\n" +
			"trip-1,bogus,bogus,3055,2\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"SAT,0,0,0,0,0,1,0,20250101,20251231\n",
		"calendar_dates.txt": "service_id,date,exception_type\n" +
			"SAT,20250809,2\n",
	})

	data, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(data.Stops) != 1 || data.Stops[0].StopID != "3054" {
		t.Errorf("stops = %+v", data.Stops)
	}
	if data.Stops[0].StopLat != -27.5 {
		t.Errorf("stop_lat = %v, expected -27.5", data.Stops[0].StopLat)
	}
	if len(data.Trips) != 1 || data.Trips[0].ServiceID != "SAT" {
		t.Errorf("trips = %+v", data.Trips)
	}

	// Rows with an unparsable arrival_time are dropped
	if len(data.StopTimes) != 1 {
		t.Fatalf("stop_times = %+v, expected the bogus row dropped", data.StopTimes)
	}
	if data.StopTimes[0].ArrivalSeconds != 36120 {
		t.Errorf("arrival_seconds = %d, expected 36120", data.StopTimes[0].ArrivalSeconds)
	}

	if len(data.Calendars) != 1 {
		t.Fatalf("calendars = %+v", data.Calendars)
	}
	c := data.Calendars[0]
	// Weekdays is indexed Sunday-first
	if !c.Weekdays[6] {
		t.Error("saturday flag lost")
	}
	for i := 0; i < 6; i++ {
		if c.Weekdays[i] {
			t.Errorf("weekday %d set, expected only saturday", i)
		}
	}

	if len(data.CalendarDates) != 1 || data.CalendarDates[0].ExceptionType != 2 {
		t.Errorf("calendar_dates = %+v", data.CalendarDates)
	}
}

func TestParseMissingFiles(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n3054,Test St,-27.5,153.0\n",
	})

	data, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(data.Stops) != 1 {
		t.Errorf("stops = %+v", data.Stops)
	}
	if len(data.Trips) != 0 || len(data.StopTimes) != 0 {
		t.Error("missing files produced data")
	}
}

func TestFilter(t *testing.T) {
	data := &Data{
		Stops: []Stop{
			{StopID: "3054"},
			{StopID: "3055"},
			{StopID: "other"},
		},
		Trips: []Trip{
			{TripID: "trip-1", RouteID: "61-4158", ServiceID: "SAT"},
			{TripID: "trip-2", RouteID: "99-0000", ServiceID: "OTHER"},
		},
		StopTimes: []StopTime{
			{TripID: "trip-1", StopID: "3054", StopSequence: 1, ArrivalSeconds: 36120},
			{TripID: "trip-1", StopID: "3055", StopSequence: 2, ArrivalSeconds: 36300},
			{TripID: "trip-2", StopID: "other", StopSequence: 1, ArrivalSeconds: 1000},
		},
		Calendars: []Calendar{
			{ServiceID: "SAT"},
			{ServiceID: "OTHER"},
		},
		CalendarDates: []CalendarDate{
			{ServiceID: "SAT", Date: "20250809", ExceptionType: 2},
			{ServiceID: "OTHER", Date: "20250809", ExceptionType: 1},
		},
	}

	filtered, routesByStop := Filter(data, []string{"61-4158"})

	if len(filtered.Trips) != 1 || filtered.Trips[0].TripID != "trip-1" {
		t.Errorf("trips = %+v", filtered.Trips)
	}
	if len(filtered.StopTimes) != 2 {
		t.Errorf("stop_times = %+v", filtered.StopTimes)
	}

	// Only stops actually served by the target route survive
	if len(filtered.Stops) != 2 {
		t.Fatalf("stops = %+v", filtered.Stops)
	}
	for _, s := range filtered.Stops {
		if s.StopID == "other" {
			t.Error("unserved stop survived the filter")
		}
	}

	if len(filtered.Calendars) != 1 || filtered.Calendars[0].ServiceID != "SAT" {
		t.Errorf("calendars = %+v", filtered.Calendars)
	}
	if len(filtered.CalendarDates) != 1 || filtered.CalendarDates[0].ServiceID != "SAT" {
		t.Errorf("calendar_dates = %+v", filtered.CalendarDates)
	}

	if got := routesByStop["3054"]; len(got) != 1 || got[0] != "61-4158" {
		t.Errorf("routesByStop[3054] = %v", got)
	}
	if _, ok := routesByStop["other"]; ok {
		t.Error("unserved stop present in route map")
	}
}

func TestFilterNoMatches(t *testing.T) {
	data := &Data{
		Trips: []Trip{{TripID: "trip-1", RouteID: "61-4158", ServiceID: "SAT"}},
	}

	filtered, routesByStop := Filter(data, []string{"no-such-route"})
	if len(filtered.Trips) != 0 || len(routesByStop) != 0 {
		t.Errorf("filtered = %+v, routes = %v, expected empty", filtered, routesByStop)
	}
}
