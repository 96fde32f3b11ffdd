// Package api exposes the map view over HTTP: viewport moves come in as
// requests and the view state and markers go out as JSON.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/landmap/internal/markers"
	"github.com/UnknownOlympus/landmap/internal/viewport"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MapView is the map state driven by the API.
type MapView interface {
	View() viewport.Viewport
	SetView(ctx context.Context, center orb.Point, zoom int) bool
	Pan(ctx context.Context, dx, dy float64) bool
	Zoom(ctx context.Context, delta int) bool
	Resize(ctx context.Context, width, height int) bool
	Markers() []markers.Marker
	ToggleFavorite(ctx context.Context, pageID int) (bool, error)
	TileURL() string
}

// Options configures the router.
type Options struct {
	CORSOrigins []string // Allowed browser origins; empty allows any.
	RateLimit   int      // Mutating requests per minute per client IP; zero disables limiting.
}

// Handler serves the map view API.
type Handler struct {
	log  *slog.Logger
	view MapView
}

// NewRouter builds the HTTP router for the map view.
func NewRouter(log *slog.Logger, view MapView, gatherer prometheus.Gatherer, opts Options) http.Handler {
	h := &Handler{log: log, view: view}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/view", h.GetView)
	r.Get("/markers", h.ListMarkers)

	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
		}
		r.Put("/view", h.SetView)
		r.Post("/view/pan", h.Pan)
		r.Post("/view/zoom", h.Zoom)
		r.Post("/view/resize", h.Resize)
		r.Post("/markers/{pageid}/favorite", h.ToggleFavorite)
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.DebugContext(r.Context(), "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
