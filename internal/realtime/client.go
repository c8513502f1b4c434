package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/balri/busstop/internal/models"
)

// ErrFeedUnavailable wraps network, HTTP and decode failures from the
// upstream feed. Transient: the client's next poll is the retry.
var ErrFeedUnavailable = errors.New("failed to fetch GTFS-RT feed")

// Snapshot is one fetch-and-reduce cycle of the trip updates feed,
// scoped to a single stop.
type Snapshot struct {
	// Candidate is the earliest not-yet-passed arrival, nil when the
	// feed has none for the stop.
	Candidate *models.ArrivalCandidate
	// TripIDs holds every not-yet-passed trip observed for the stop in
	// this snapshot, candidate or not.
	TripIDs map[string]struct{}
}

// Client fetches and decodes the GTFS-RT trip updates feed for one route.
type Client struct {
	feedURL string
	routeID string
	grace   time.Duration
	client  *http.Client
	cache   *SightingCache
	now     func() time.Time
}

// NewClient creates a feed client. Every trip observed in a snapshot is
// recorded into cache so the schedule reconciler can distinguish feed
// churn from genuinely missing service.
func NewClient(feedURL, routeID string, grace, timeout time.Duration, cache *SightingCache) *Client {
	return &Client{
		feedURL: feedURL,
		routeID: routeID,
		grace:   grace,
		client: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
		now:   time.Now,
	}
}

// Fetch retrieves one feed snapshot reduced to the given stop.
func (c *Client) Fetch(ctx context.Context, stopID string) (Snapshot, error) {
	feed, err := c.fetchFeed(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	snap := Reduce(feed, c.routeID, stopID, c.now(), c.grace)

	for tripID := range snap.TripIDs {
		c.cache.Observe(stopID, tripID)
	}

	return snap, nil
}

// Reduce filters decoded feed entities to the target route and stop and
// selects the earliest arrival at or after now minus the grace period.
// Duplicate entities for the same trip collapse to one candidate.
func Reduce(feed *gtfs.FeedMessage, routeID, stopID string, now time.Time, grace time.Duration) Snapshot {
	snap := Snapshot{TripIDs: make(map[string]struct{})}
	cutoff := now.Add(-grace).Unix()

	for _, entity := range feed.Entity {
		tu := entity.TripUpdate
		if tu == nil || tu.Trip == nil {
			continue
		}
		if tu.Trip.RouteId == nil || *tu.Trip.RouteId != routeID {
			continue
		}
		if tu.Trip.TripId == nil {
			continue
		}
		tripID := *tu.Trip.TripId

		for _, stu := range tu.StopTimeUpdate {
			if stu.StopId == nil || *stu.StopId != stopID {
				continue
			}
			if stu.Arrival == nil || stu.Arrival.Time == nil {
				continue
			}

			arrivalUnix := *stu.Arrival.Time
			if arrivalUnix < cutoff {
				continue // already passed
			}

			snap.TripIDs[tripID] = struct{}{}

			estimated := time.Unix(arrivalUnix, 0)
			if snap.Candidate != nil && !estimated.Before(snap.Candidate.Estimated) {
				continue
			}

			candidate := &models.ArrivalCandidate{
				TripID:    tripID,
				Estimated: estimated,
			}
			if tu.Trip.StartDate != nil {
				candidate.StartDate = *tu.Trip.StartDate
			}
			if stu.Arrival.Delay != nil {
				delay := int(*stu.Arrival.Delay)
				candidate.Delay = &delay
			}
			snap.Candidate = candidate
		}
	}

	return snap
}

// fetchFeed downloads and parses the protobuf feed
func (c *Client) fetchFeed(ctx context.Context) (*gtfs.FeedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, fmt.Errorf("failed to parse protobuf: %w", err)
	}

	return feed, nil
}
