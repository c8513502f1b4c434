package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/balri/busstop/internal/config"
	"github.com/balri/busstop/internal/geo"
	"github.com/balri/busstop/internal/location"
	"github.com/balri/busstop/internal/metrics"
	"github.com/balri/busstop/internal/models"
	"github.com/balri/busstop/internal/realtime"
	"github.com/balri/busstop/internal/schedule"
	"github.com/balri/busstop/internal/status"
)

// TokenValidator validates session tokens presented by callers.
type TokenValidator interface {
	Validate(value string) bool
}

// FeedSource provides one reduced real-time feed snapshot per request.
type FeedSource interface {
	Fetch(ctx context.Context, stopID string) (realtime.Snapshot, error)
}

// Reconciler cross-checks the timetable against real-time evidence.
type Reconciler interface {
	Reconcile(ctx context.Context, stopID, routeID string, realtimeTripIDs map[string]struct{}) (schedule.Result, error)
}

// StatusHandler answers "is my bus on schedule and has it arrived" for a
// caller holding a session token and an obfuscated position.
type StatusHandler struct {
	tokens     TokenValidator
	feed       FeedSource
	reconciler Reconciler
	stops      []models.Stop
	collector  *metrics.Collector
	cfg        *config.Config
	now        func() time.Time
}

// NewStatusHandler creates a new handler. stops must be non-empty; the
// server refuses to start otherwise.
func NewStatusHandler(tokens TokenValidator, feed FeedSource, reconciler Reconciler, stops []models.Stop, collector *metrics.Collector, cfg *config.Config) *StatusHandler {
	return &StatusHandler{
		tokens:     tokens,
		feed:       feed,
		reconciler: reconciler,
		stops:      stops,
		collector:  collector,
		cfg:        cfg,
		now:        time.Now,
	}
}

// statusRequest is the JSON body for POST /api/status
type statusRequest struct {
	Loc   string `json:"loc"`
	Token string `json:"token"`
}

// PostStatus handles POST /api/status
func (h *StatusHandler) PostStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.collector.StatusErrors.WithLabelValues("client_input").Inc()
		writeError(w, http.StatusBadRequest, "Invalid coordinates", nil)
		return
	}

	if !h.tokens.Validate(req.Token) {
		h.collector.StatusErrors.WithLabelValues("authorization").Inc()
		writeError(w, http.StatusForbidden, "Invalid or expired token", nil)
		return
	}

	// The token doubles as the XOR key for the location payload.
	coords, err := location.Decode(req.Loc, req.Token)
	if err != nil {
		h.collector.StatusErrors.WithLabelValues("client_input").Inc()
		writeError(w, http.StatusBadRequest, "Invalid coordinates", nil)
		return
	}

	match, err := geo.Nearest(coords.Lat, coords.Lon, h.stops)
	if err != nil {
		// Startup guarantees a non-empty stop set; reaching this means
		// the deployment is broken.
		log.Printf("Status: nearest stop lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "DB error", nil)
		return
	}

	nearest := &models.NearestStop{
		StopID:         match.Stop.StopID,
		StopName:       match.Stop.StopName,
		Lat:            match.Stop.Lat,
		Lon:            match.Stop.Lon,
		DistanceMeters: int(math.Round(match.DistanceMeters)),
	}
	nearEnough := match.DistanceMeters <= h.cfg.MinDistanceMeters

	if h.cfg.ProximityStrict() && !nearEnough {
		h.collector.StatusErrors.WithLabelValues("not_near").Inc()
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("No bus stop within %.0fm", h.cfg.MinDistanceMeters), nearest)
		return
	}

	fetchStart := h.now()
	snap, err := h.feed.Fetch(ctx, match.Stop.StopID)
	h.collector.FeedFetchDuration.Observe(h.now().Sub(fetchStart).Seconds())
	if err != nil {
		h.collector.FeedFetchErrors.Inc()
		h.collector.StatusErrors.WithLabelValues("upstream").Inc()
		log.Printf("Status: feed fetch failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch GTFS-RT feed", nil)
		return
	}

	result, err := h.reconciler.Reconcile(ctx, match.Stop.StopID, h.cfg.RouteID, snap.TripIDs)
	if err != nil {
		h.collector.StatusErrors.WithLabelValues("upstream").Inc()
		log.Printf("Status: timetable query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "DB error", nil)
		return
	}

	resp := h.assemble(snap.Candidate, result, nearest, nearEnough)

	h.collector.StatusRequests.WithLabelValues(resp.Status).Inc()
	if resp.Keyword != "" {
		h.collector.Reveals.Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

// assemble composes the outward-facing status record from the feed
// candidate and the reconciler verdict. Pure; no I/O.
func (h *StatusHandler) assemble(candidate *models.ArrivalCandidate, result schedule.Result, nearest *models.NearestStop, nearEnough bool) models.StatusResponse {
	now := h.now()

	var (
		estimated time.Time
		scheduled *time.Time
		delay     *int
		missing   bool
	)

	switch {
	case result.Missing && result.Candidate != nil:
		// A scheduled trip with no real-time evidence for the whole
		// sighting window: report it against its timetabled instant and
		// ignore whatever else the feed offered.
		missing = true
		estimated = result.Candidate.Scheduled
		scheduled = &result.Candidate.Scheduled

	case candidate != nil:
		estimated = candidate.Estimated
		delay = candidate.Delay
		if result.Candidate != nil && result.Candidate.TripID == candidate.TripID {
			scheduled = &result.Candidate.Scheduled
		} else if candidate.Delay != nil {
			s := estimated.Add(-time.Duration(*candidate.Delay) * time.Second)
			scheduled = &s
		}

	case result.Candidate != nil:
		// Seen recently but absent from this snapshot: trust the
		// timetable rather than declare the trip gone.
		estimated = result.Candidate.Scheduled
		scheduled = &result.Candidate.Scheduled

	default:
		return models.StatusResponse{Status: status.NoService}
	}

	resp := models.StatusResponse{
		Status:  status.Classify(true, missing, delay, h.cfg.AcceptableDelay),
		Delay:   delay,
		Nearest: nearest,
	}

	est := estimated.Unix()
	resp.EstimatedTime = &est
	if scheduled != nil {
		s := scheduled.Unix()
		resp.ScheduledTime = &s
	}

	if h.cfg.SecretKeyword != "" &&
		status.ShouldReveal(nearEnough, estimated, now, h.cfg.RevealWindow) {
		resp.Keyword = h.cfg.SecretKeyword
	}

	return resp
}
