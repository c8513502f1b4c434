package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/balri/busstop/internal/models"
	"github.com/balri/busstop/internal/realtime"
)

// TimetableStore is the slice of the timetable the reconciler needs.
type TimetableStore interface {
	ScheduledArrivals(ctx context.Context, stopID, routeID, serviceDate string, dayOfWeek, fromSeconds, toSeconds int) ([]models.ScheduledStopTime, error)
}

// Result is the reconciler's verdict for one request.
type Result struct {
	// Candidate is the earliest scheduled arrival inside the lookahead
	// window, nil when the timetable has none.
	Candidate *models.ScheduledArrival
	// Missing means the scheduled trip has no corroborating real-time
	// evidence: absent from the current snapshot and from the sighting
	// cache for the full window.
	Missing bool
}

// Reconciler cross-checks the static timetable against real-time feed
// evidence to detect trips silently dropped from the feed.
type Reconciler struct {
	store     TimetableStore
	cache     *realtime.SightingCache
	loc       *time.Location
	lookahead time.Duration
	grace     time.Duration
	now       func() time.Time
}

// NewReconciler creates a reconciler. loc is the feed's local timezone;
// GTFS times are seconds since midnight of the service date in that zone.
func NewReconciler(store TimetableStore, cache *realtime.SightingCache, loc *time.Location, lookahead, grace time.Duration) *Reconciler {
	return &Reconciler{
		store:     store,
		cache:     cache,
		loc:       loc,
		lookahead: lookahead,
		grace:     grace,
		now:       time.Now,
	}
}

// Reconcile finds the next scheduled arrival at the stop and decides
// whether it is genuinely missing from the feed. realtimeTripIDs are the
// trips observed for this stop in the current snapshot.
func (r *Reconciler) Reconcile(ctx context.Context, stopID, routeID string, realtimeTripIDs map[string]struct{}) (Result, error) {
	now := r.now().In(r.loc)
	serviceDate := now.Format("20060102")
	dayOfWeek := int(now.Weekday())

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
	nowSeconds := int(now.Sub(midnight) / time.Second)

	fromSeconds := nowSeconds - int(r.grace/time.Second)
	toSeconds := nowSeconds + int(r.lookahead/time.Second)

	arrivals, err := r.store.ScheduledArrivals(ctx, stopID, routeID, serviceDate, dayOfWeek, fromSeconds, toSeconds)
	if err != nil {
		return Result{}, fmt.Errorf("failed to query timetable: %w", err)
	}
	if len(arrivals) == 0 {
		return Result{}, nil
	}

	// Rows come back ordered by arrival time; the first is the candidate.
	next := arrivals[0]
	candidate := &models.ScheduledArrival{
		TripID:    next.TripID,
		StopID:    stopID,
		RouteID:   routeID,
		Scheduled: midnight.Add(time.Duration(next.ArrivalSeconds) * time.Second),
	}

	_, inFeed := realtimeTripIDs[next.TripID]
	missing := !inFeed && !r.cache.SeenRecently(stopID, next.TripID)

	return Result{Candidate: candidate, Missing: missing}, nil
}
