package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/balri/busstop/internal/models"
)

// ScheduleRepository answers timetable queries against SQLite
type ScheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Ping tests database connectivity
func (r *ScheduleRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ScheduledArrivals returns timetabled arrivals at a stop for one route,
// limited to services active on the given date and to arrival times
// inside [fromSeconds, toSeconds] (seconds since midnight of the service
// date). Active services follow the weekly calendar pattern within its
// date range, minus calendar_dates removals, plus calendar_dates
// additions. Ordered by arrival time.
func (r *ScheduleRepository) ScheduledArrivals(ctx context.Context, stopID, routeID, serviceDate string, dayOfWeek, fromSeconds, toSeconds int) ([]models.ScheduledStopTime, error) {
	query := `
		WITH active_services AS (
			SELECT c.service_id
			FROM calendar c
			WHERE c.start_date <= ?
			  AND c.end_date >= ?
			  AND (
				(? = 0 AND c.sunday = 1) OR
				(? = 1 AND c.monday = 1) OR
				(? = 2 AND c.tuesday = 1) OR
				(? = 3 AND c.wednesday = 1) OR
				(? = 4 AND c.thursday = 1) OR
				(? = 5 AND c.friday = 1) OR
				(? = 6 AND c.saturday = 1)
			  )
			  -- Exclude services removed for this date
			  AND c.service_id NOT IN (
				SELECT cd.service_id FROM calendar_dates cd
				WHERE cd.date = ? AND cd.exception_type = 2
			  )
			UNION
			-- Services added for this date
			SELECT cd.service_id FROM calendar_dates cd
			WHERE cd.date = ? AND cd.exception_type = 1
		)
		SELECT st.trip_id, st.arrival_seconds
		FROM stop_times st
		JOIN trips t ON t.trip_id = st.trip_id
		JOIN active_services a ON a.service_id = t.service_id
		WHERE st.stop_id = ?
		  AND t.route_id = ?
		  AND st.arrival_seconds BETWEEN ? AND ?
		ORDER BY st.arrival_seconds
	`

	rows, err := r.db.QueryContext(ctx, query,
		serviceDate, serviceDate,
		dayOfWeek, dayOfWeek, dayOfWeek, dayOfWeek, dayOfWeek, dayOfWeek, dayOfWeek,
		serviceDate,
		serviceDate,
		stopID, routeID,
		fromSeconds, toSeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled arrivals: %w", err)
	}
	defer rows.Close()

	var arrivals []models.ScheduledStopTime
	for rows.Next() {
		var a models.ScheduledStopTime
		if err := rows.Scan(&a.TripID, &a.ArrivalSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled arrival: %w", err)
		}
		arrivals = append(arrivals, a)
	}

	return arrivals, rows.Err()
}

// LoadStops returns every stop with the set of routes serving it.
func (r *ScheduleRepository) LoadStops(ctx context.Context) ([]models.Stop, error) {
	query := `
		SELECT s.stop_id, s.stop_name, s.stop_lat, s.stop_lon,
		       COALESCE(sr.route_id, '') as route_id
		FROM stops s
		LEFT JOIN stop_routes sr ON sr.stop_id = s.stop_id
		ORDER BY s.stop_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	var stops []models.Stop
	for rows.Next() {
		var (
			stopID, stopName, routeID string
			lat, lon                  float64
		)
		if err := rows.Scan(&stopID, &stopName, &lat, &lon, &routeID); err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}

		// Rows are ordered by stop_id, so repeated ids fold into the
		// previous stop's route set.
		if n := len(stops); n > 0 && stops[n-1].StopID == stopID {
			if routeID != "" {
				stops[n-1].RouteIDs = append(stops[n-1].RouteIDs, routeID)
			}
			continue
		}

		stop := models.Stop{
			StopID:   stopID,
			StopName: stopName,
			Lat:      lat,
			Lon:      lon,
		}
		if routeID != "" {
			stop.RouteIDs = []string{routeID}
		}
		stops = append(stops, stop)
	}

	return stops, rows.Err()
}
