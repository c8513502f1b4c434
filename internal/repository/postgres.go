package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/balri/busstop/internal/models"
)

// PGScheduleRepository answers the same timetable queries as
// ScheduleRepository against Postgres, for deployments where the GTFS
// import lands in a shared database instead of a local SQLite file.
type PGScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewPGScheduleRepository creates a new PGScheduleRepository
func NewPGScheduleRepository(databaseURL string) (*PGScheduleRepository, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PGScheduleRepository{pool: pool}, nil
}

// Close releases the connection pool.
func (r *PGScheduleRepository) Close() {
	r.pool.Close()
}

// Ping tests database connectivity
func (r *PGScheduleRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ScheduledArrivals mirrors ScheduleRepository.ScheduledArrivals.
func (r *PGScheduleRepository) ScheduledArrivals(ctx context.Context, stopID, routeID, serviceDate string, dayOfWeek, fromSeconds, toSeconds int) ([]models.ScheduledStopTime, error) {
	query := `
		WITH active_services AS (
			SELECT c.service_id
			FROM calendar c
			WHERE c.start_date <= $1
			  AND c.end_date >= $1
			  AND (
				($2 = 0 AND c.sunday = 1) OR
				($2 = 1 AND c.monday = 1) OR
				($2 = 2 AND c.tuesday = 1) OR
				($2 = 3 AND c.wednesday = 1) OR
				($2 = 4 AND c.thursday = 1) OR
				($2 = 5 AND c.friday = 1) OR
				($2 = 6 AND c.saturday = 1)
			  )
			  AND c.service_id NOT IN (
				SELECT cd.service_id FROM calendar_dates cd
				WHERE cd.date = $1 AND cd.exception_type = 2
			  )
			UNION
			SELECT cd.service_id FROM calendar_dates cd
			WHERE cd.date = $1 AND cd.exception_type = 1
		)
		SELECT st.trip_id, st.arrival_seconds
		FROM stop_times st
		JOIN trips t ON t.trip_id = st.trip_id
		JOIN active_services a ON a.service_id = t.service_id
		WHERE st.stop_id = $3
		  AND t.route_id = $4
		  AND st.arrival_seconds BETWEEN $5 AND $6
		ORDER BY st.arrival_seconds
	`

	rows, err := r.pool.Query(ctx, query, serviceDate, dayOfWeek, stopID, routeID, fromSeconds, toSeconds)
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

// LoadStops mirrors ScheduleRepository.LoadStops.
func (r *PGScheduleRepository) LoadStops(ctx context.Context) ([]models.Stop, error) {
	query := `
		SELECT s.stop_id, s.stop_name, s.stop_lat, s.stop_lon,
		       COALESCE(sr.route_id, '') as route_id
		FROM stops s
		LEFT JOIN stop_routes sr ON sr.stop_id = s.stop_id
		ORDER BY s.stop_id
	`

	rows, err := r.pool.Query(ctx, query)
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
