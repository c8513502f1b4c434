package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the service's Prometheus metrics on a private
// registry.
type Collector struct {
	reg *prometheus.Registry

	StatusRequests *prometheus.CounterVec // status label: on_time|late|early|missing_trip|no_service
	StatusErrors   *prometheus.CounterVec // kind label: client_input|authorization|upstream|not_near
	Reveals        prometheus.Counter

	FeedFetchDuration prometheus.Histogram
	FeedFetchErrors   prometheus.Counter

	TokensIssued prometheus.Counter
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		StatusRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busstop_status_requests_total",
			Help: "Status checks completed, by resulting status.",
		}, []string{"status"}),
		StatusErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busstop_status_errors_total",
			Help: "Status checks rejected or failed, by error kind.",
		}, []string{"kind"}),
		Reveals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busstop_reveals_total",
			Help: "Responses that included the reward keyword.",
		}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "busstop_feed_fetch_seconds",
			Help:    "GTFS-RT feed fetch and decode duration.",
			Buckets: prometheus.DefBuckets,
		}),
		FeedFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busstop_feed_fetch_errors_total",
			Help: "Failed GTFS-RT feed fetches.",
		}),
		TokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busstop_tokens_issued_total",
			Help: "Session tokens issued.",
		}),
	}

	reg.MustRegister(
		c.StatusRequests,
		c.StatusErrors,
		c.Reveals,
		c.FeedFetchDuration,
		c.FeedFetchErrors,
		c.TokensIssued,
	)

	return c
}

// Handler returns the HTTP handler serving the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
