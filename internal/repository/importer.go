package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/balri/busstop/internal/gtfs"
)

// ImportStatic replaces the timetable contents with a filtered GTFS
// dataset. Runs in a single transaction so a failed import leaves the
// previous data intact.
func (s *SQLiteDB) ImportStatic(ctx context.Context, data *gtfs.Data, routesByStop map[string][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"stops", "stop_routes", "trips", "stop_times", "calendar", "calendar_dates"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := importStops(ctx, tx, data, routesByStop); err != nil {
		return err
	}
	if err := importTrips(ctx, tx, data); err != nil {
		return err
	}
	if err := importStopTimes(ctx, tx, data); err != nil {
		return err
	}
	if err := importCalendars(ctx, tx, data); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func importStops(ctx context.Context, tx *sql.Tx, data *gtfs.Data, routesByStop map[string][]string) error {
	stopStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO stops (stop_id, stop_name, stop_lat, stop_lon) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare stops insert: %w", err)
	}
	defer stopStmt.Close()

	routeStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO stop_routes (stop_id, route_id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare stop_routes insert: %w", err)
	}
	defer routeStmt.Close()

	for _, stop := range data.Stops {
		if _, err := stopStmt.ExecContext(ctx, stop.StopID, stop.StopName, stop.StopLat, stop.StopLon); err != nil {
			return fmt.Errorf("failed to insert stop %s: %w", stop.StopID, err)
		}
		for _, routeID := range routesByStop[stop.StopID] {
			if _, err := routeStmt.ExecContext(ctx, stop.StopID, routeID); err != nil {
				return fmt.Errorf("failed to insert stop_route %s/%s: %w", stop.StopID, routeID, err)
			}
		}
	}
	return nil
}

func importTrips(ctx context.Context, tx *sql.Tx, data *gtfs.Data) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO trips (trip_id, route_id, service_id) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare trips insert: %w", err)
	}
	defer stmt.Close()

	for _, trip := range data.Trips {
		if _, err := stmt.ExecContext(ctx, trip.TripID, trip.RouteID, trip.ServiceID); err != nil {
			return fmt.Errorf("failed to insert trip %s: %w", trip.TripID, err)
		}
	}
	return nil
}

func importStopTimes(ctx context.Context, tx *sql.Tx, data *gtfs.Data) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO stop_times (trip_id, stop_id, stop_sequence, arrival_seconds) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare stop_times insert: %w", err)
	}
	defer stmt.Close()

	for _, st := range data.StopTimes {
		if _, err := stmt.ExecContext(ctx, st.TripID, st.StopID, st.StopSequence, st.ArrivalSeconds); err != nil {
			return fmt.Errorf("failed to insert stop_time %s/%d: %w", st.TripID, st.StopSequence, err)
		}
	}
	return nil
}

func importCalendars(ctx context.Context, tx *sql.Tx, data *gtfs.Data) error {
	calStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO calendar (service_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare calendar insert: %w", err)
	}
	defer calStmt.Close()

	b2i := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}

	for _, c := range data.Calendars {
		// Weekdays is indexed Sunday-first (time.Weekday order).
		if _, err := calStmt.ExecContext(ctx, c.ServiceID,
			b2i(c.Weekdays[1]), b2i(c.Weekdays[2]), b2i(c.Weekdays[3]), b2i(c.Weekdays[4]),
			b2i(c.Weekdays[5]), b2i(c.Weekdays[6]), b2i(c.Weekdays[0]),
			c.StartDate, c.EndDate); err != nil {
			return fmt.Errorf("failed to insert calendar %s: %w", c.ServiceID, err)
		}
	}

	dateStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO calendar_dates (service_id, date, exception_type) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare calendar_dates insert: %w", err)
	}
	defer dateStmt.Close()

	for _, cd := range data.CalendarDates {
		if _, err := dateStmt.ExecContext(ctx, cd.ServiceID, cd.Date, cd.ExceptionType); err != nil {
			return fmt.Errorf("failed to insert calendar_date %s/%s: %w", cd.ServiceID, cd.Date, err)
		}
	}
	return nil
}
