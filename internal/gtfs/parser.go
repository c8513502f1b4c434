package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// Parse reads a GTFS zip file and returns parsed data
func Parse(zipPath string) (*Data, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	data := &Data{}

	// Build file map for easy lookup
	files := make(map[string]*zip.File)
	for _, f := range r.File {
		files[f.Name] = f
	}

	if f, ok := files["stops.txt"]; ok {
		stops, err := parseStops(f)
		if err != nil {
			log.Printf("Warning: failed to parse stops.txt: %v", err)
		} else {
			data.Stops = stops
		}
	}

	if f, ok := files["trips.txt"]; ok {
		trips, err := parseTrips(f)
		if err != nil {
			log.Printf("Warning: failed to parse trips.txt: %v", err)
		} else {
			data.Trips = trips
		}
	}

	if f, ok := files["stop_times.txt"]; ok {
		stopTimes, err := parseStopTimes(f)
		if err != nil {
			log.Printf("Warning: failed to parse stop_times.txt: %v", err)
		} else {
			data.StopTimes = stopTimes
		}
	}

	if f, ok := files["calendar.txt"]; ok {
		calendars, err := parseCalendars(f)
		if err != nil {
			log.Printf("Warning: failed to parse calendar.txt: %v", err)
		} else {
			data.Calendars = calendars
		}
	}

	if f, ok := files["calendar_dates.txt"]; ok {
		dates, err := parseCalendarDates(f)
		if err != nil {
			log.Printf("Warning: failed to parse calendar_dates.txt: %v", err)
		} else {
			data.CalendarDates = dates
		}
	}

	log.Printf("GTFS parsed: %d stops, %d trips, %d stop_times, %d calendars, %d calendar_dates",
		len(data.Stops), len(data.Trips), len(data.StopTimes), len(data.Calendars), len(data.CalendarDates))

	return data, nil
}

func parseStops(f *zip.File) ([]Stop, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idx := makeIndex(header)
	var stops []Stop

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		lat, _ := strconv.ParseFloat(getField(record, idx, "stop_lat"), 64)
		lon, _ := strconv.ParseFloat(getField(record, idx, "stop_lon"), 64)

		stops = append(stops, Stop{
			StopID:   getField(record, idx, "stop_id"),
			StopName: getField(record, idx, "stop_name"),
			StopLat:  lat,
			StopLon:  lon,
		})
	}

	return stops, nil
}

func parseTrips(f *zip.File) ([]Trip, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idx := makeIndex(header)
	var trips []Trip

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		trips = append(trips, Trip{
			RouteID:   getField(record, idx, "route_id"),
			ServiceID: getField(record, idx, "service_id"),
			TripID:    getField(record, idx, "trip_id"),
		})
	}

	return trips, nil
}

func parseStopTimes(f *zip.File) ([]StopTime, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idx := makeIndex(header)
	var stopTimes []StopTime

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		seq, _ := strconv.Atoi(getField(record, idx, "stop_sequence"))

		arrival, err := TimeToSeconds(getField(record, idx, "arrival_time"))
		if err != nil {
			continue
		}

		stopTimes = append(stopTimes, StopTime{
			TripID:         getField(record, idx, "trip_id"),
			StopID:         getField(record, idx, "stop_id"),
			StopSequence:   seq,
			ArrivalSeconds: arrival,
		})
	}

	return stopTimes, nil
}

func parseCalendars(f *zip.File) ([]Calendar, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idx := makeIndex(header)
	var calendars []Calendar

	// time.Weekday order: Sunday first.
	dayColumns := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		c := Calendar{
			ServiceID: getField(record, idx, "service_id"),
			StartDate: getField(record, idx, "start_date"),
			EndDate:   getField(record, idx, "end_date"),
		}
		for i, col := range dayColumns {
			c.Weekdays[i] = getField(record, idx, col) == "1"
		}

		calendars = append(calendars, c)
	}

	return calendars, nil
}

func parseCalendarDates(f *zip.File) ([]CalendarDate, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idx := makeIndex(header)
	var dates []CalendarDate

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		exceptionType, _ := strconv.Atoi(getField(record, idx, "exception_type"))

		dates = append(dates, CalendarDate{
			ServiceID:     getField(record, idx, "service_id"),
			Date:          getField(record, idx, "date"),
			ExceptionType: exceptionType,
		})
	}

	return dates, nil
}

// TimeToSeconds converts a GTFS HH:MM:SS time to seconds since midnight.
// Hours may exceed 23 for trips running past midnight.
func TimeToSeconds(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	return h*3600 + m*60 + sec, nil
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, field string) string {
	if i, ok := idx[field]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}
