package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch statuses recorded by LandmarkFetches.
const (
	FetchSuccess   = "success"
	FetchFailure   = "failure"
	FetchMalformed = "malformed"
	FetchStale     = "stale"
)

type Metrics struct {
	MoveEvents      *prometheus.CounterVec
	LandmarkFetches *prometheus.CounterVec
	BackendErrors   *prometheus.CounterVec
	RequestSeconds  *prometheus.HistogramVec
	Markers         prometheus.Gauge
	FavoriteToggles *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		MoveEvents: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "landmap_move_events_total",
			Help: "Total number of viewport settle events, by whether they fetched landmarks.",
		}, []string{"action"}),
		LandmarkFetches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "landmap_landmark_fetches_total",
			Help: "Total number of landmark fetches, by outcome.",
		}, []string{"status"}),
		BackendErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "landmap_backend_errors_total",
			Help: "Total number of errors received from the landmark backend.",
		}, []string{"endpoint"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landmap_backend_request_duration_seconds",
			Help:    "Duration of requests to the landmark backend.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Markers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "landmap_markers",
			Help: "Current number of markers on the map.",
		}),
		FavoriteToggles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "landmap_favorite_toggles_total",
			Help: "Total number of favorite toggles, by action and outcome.",
		}, []string{"action", "status"}),
	}
}
