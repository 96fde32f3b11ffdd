// Package mapview is the stateful map view: it owns the viewport and the
// marker layer, fetches landmarks when the viewport settles, and mirrors the
// user's favorites into marker popups.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/landmap/internal/backend"
	"github.com/UnknownOlympus/landmap/internal/geolocation"
	"github.com/UnknownOlympus/landmap/internal/markers"
	"github.com/UnknownOlympus/landmap/internal/metrics"
	"github.com/UnknownOlympus/landmap/internal/models"
	"github.com/UnknownOlympus/landmap/internal/viewport"
	"github.com/paulmach/orb"
)

// Defaults for the map view.
const (
	InitialZoom         = 2
	DefaultFetchMinZoom = 10
	DefaultLocateZoom   = 13
	DefaultWidth        = 1024
	DefaultHeight       = 768
)

// ErrMarkerNotFound is returned when an operation names a landmark that has no marker.
var ErrMarkerNotFound = errors.New("marker not found")

// Backend is the landmark backend as seen by the map view.
type Backend interface {
	GetLandmarks(ctx context.Context, center orb.Point, radius float64) ([]models.Landmark, error)
	AddFavorite(ctx context.Context, landmark models.Landmark) error
	RemoveFavorite(ctx context.Context, pageID int) error
	GetFavorites(ctx context.Context) ([]models.Favorite, error)
}

// Options tunes the map view.
type Options struct {
	Width        int    // Screen width in pixels.
	Height       int    // Screen height in pixels.
	FetchMinZoom int    // Landmarks are fetched only when zoom is strictly above this level; zero selects DefaultFetchMinZoom, negative fetches at every zoom.
	LocateZoom   int    // Zoom applied after a successful geolocation.
	Favorites    bool   // Favorites sync after each fetch; requires an authenticated backend.
	TileURL      string // Tile URL template.
}

// MapView holds the viewport and marker state. All methods are safe for
// concurrent use; no lock is held across network calls.
type MapView struct {
	log     *slog.Logger         // Logger for logging view activities
	backend Backend              // Landmark backend
	locator geolocation.Provider // Source of the user position
	metrics *metrics.Metrics     // Metrics for tracking view activity
	opts    Options

	mu          sync.Mutex
	view        viewport.Viewport
	layer       *markers.Layer
	generation  uint64             // generation of the latest landmark fetch
	cancelFetch context.CancelFunc // cancels the in-flight landmark fetch
}

// NewMapView creates a map view showing the whole world: center [0,0], zoom 2.
func NewMapView(
	log *slog.Logger,
	backend Backend,
	locator geolocation.Provider,
	metrics *metrics.Metrics,
	opts Options,
) *MapView {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.FetchMinZoom == 0 {
		opts.FetchMinZoom = DefaultFetchMinZoom
	}
	if opts.LocateZoom <= 0 {
		opts.LocateZoom = DefaultLocateZoom
	}
	if opts.TileURL == "" {
		opts.TileURL = viewport.OSMTileURL
	}

	return &MapView{
		log:     log,
		backend: backend,
		locator: locator,
		metrics: metrics,
		opts:    opts,
		view:    viewport.New(orb.Point{0, 0}, InitialZoom, opts.Width, opts.Height),
		layer:   markers.NewLayer(),
	}
}

// Init asks the geolocation provider for the user position and recenters the
// view on it. When the position is unknown the world view stays in place.
func (mv *MapView) Init(ctx context.Context) {
	mv.log.InfoContext(ctx, "Requesting geolocation")

	coords, err := mv.locator.Locate(ctx)
	if err != nil {
		if errors.Is(err, geolocation.ErrUnavailable) {
			mv.log.InfoContext(ctx, "Geolocation not available")
		} else {
			mv.log.WarnContext(ctx, "Geolocation error", "error", err)
		}
		return
	}

	mv.log.InfoContext(ctx, "Geolocation set", "lat", coords.Latitude, "lon", coords.Longitude)
	mv.SetView(ctx, coords.Point(), mv.opts.LocateZoom)
}

// SetView recenters the map and settles it. It reports whether landmarks were fetched.
func (mv *MapView) SetView(ctx context.Context, center orb.Point, zoom int) bool {
	return mv.move(ctx, func(v viewport.Viewport) viewport.Viewport {
		return viewport.New(center, zoom, v.Width, v.Height)
	})
}

// Pan moves the map by a screen delta in pixels and settles it.
func (mv *MapView) Pan(ctx context.Context, dx, dy float64) bool {
	return mv.move(ctx, func(v viewport.Viewport) viewport.Viewport {
		return v.Panned(dx, dy)
	})
}

// Zoom changes the zoom level by delta and settles the map.
func (mv *MapView) Zoom(ctx context.Context, delta int) bool {
	return mv.move(ctx, func(v viewport.Viewport) viewport.Viewport {
		return v.Zoomed(v.Zoom + delta)
	})
}

// Resize changes the screen size and settles the map.
func (mv *MapView) Resize(ctx context.Context, width, height int) bool {
	return mv.move(ctx, func(v viewport.Viewport) viewport.Viewport {
		return v.Resized(width, height)
	})
}

func (mv *MapView) move(ctx context.Context, apply func(viewport.Viewport) viewport.Viewport) bool {
	mv.mu.Lock()
	mv.view = apply(mv.view)
	mv.mu.Unlock()

	return mv.MoveEnd(ctx)
}

// MoveEnd handles a settled viewport. Landmarks are fetched only when the
// zoom level is above the configured threshold. A newer MoveEnd cancels the
// fetch of an older one, and results of superseded fetches are dropped.
// It reports whether a fetch was issued.
func (mv *MapView) MoveEnd(ctx context.Context) bool {
	mv.mu.Lock()
	view := mv.view
	if view.Zoom <= mv.opts.FetchMinZoom {
		mv.mu.Unlock()
		mv.log.DebugContext(ctx, "Zoom level too low, not fetching landmarks", "zoom", view.Zoom)
		mv.metrics.MoveEvents.WithLabelValues("skipped").Inc()
		return false
	}

	if mv.cancelFetch != nil {
		mv.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	mv.generation++
	gen := mv.generation
	mv.cancelFetch = cancel
	mv.mu.Unlock()
	defer cancel()

	mv.log.DebugContext(ctx, "Zoom level sufficient, fetching landmarks", "zoom", view.Zoom)
	mv.metrics.MoveEvents.WithLabelValues("fetched").Inc()

	if mv.fetchLandmarks(fetchCtx, gen, view) && mv.opts.Favorites {
		if err := mv.SyncFavorites(fetchCtx); err != nil {
			mv.log.ErrorContext(ctx, "Failed to sync favorites", "error", err)
		}
	}

	return true
}

// fetchLandmarks loads landmarks for the viewport and renders them unless a
// newer fetch has started meanwhile. It reports whether markers were replaced
// with a fresh landmark set.
func (mv *MapView) fetchLandmarks(ctx context.Context, gen uint64, view viewport.Viewport) bool {
	center := view.Bounds().Center()
	radius := view.Radius()
	mv.log.InfoContext(ctx, "Fetching landmarks", "lat", center.Lat(), "lon", center.Lon(), "radius", radius)

	startTime := time.Now()
	landmarks, err := mv.backend.GetLandmarks(ctx, center, radius)
	duration := time.Since(startTime).Seconds()
	mv.metrics.RequestSeconds.WithLabelValues(backend.EndpointLandmarks).Observe(duration)

	mv.mu.Lock()
	defer mv.mu.Unlock()

	if gen != mv.generation {
		mv.log.DebugContext(ctx, "Discarding superseded landmark fetch", "generation", gen)
		mv.metrics.LandmarkFetches.WithLabelValues(metrics.FetchStale).Inc()
		return false
	}

	switch {
	case err == nil:
		removed := mv.layer.Replace(landmarks)
		mv.metrics.Markers.Set(float64(mv.layer.Len()))
		mv.metrics.LandmarkFetches.WithLabelValues(metrics.FetchSuccess).Inc()
		mv.log.InfoContext(ctx, "Landmarks rendered", "removed", removed, "added", len(landmarks))
		return true
	case errors.Is(err, backend.ErrMalformedPayload):
		removed := mv.layer.Clear()
		mv.metrics.Markers.Set(0)
		mv.metrics.LandmarkFetches.WithLabelValues(metrics.FetchMalformed).Inc()
		mv.log.WarnContext(ctx, "Landmarks payload is not a list, nothing rendered", "removed", removed, "error", err)
		return false
	default:
		mv.metrics.LandmarkFetches.WithLabelValues(metrics.FetchFailure).Inc()
		mv.metrics.BackendErrors.WithLabelValues(backend.EndpointLandmarks).Inc()
		mv.log.ErrorContext(ctx, "Error fetching landmarks", "error", err)
		return false
	}
}

// SyncFavorites pulls the user's favorites and marks the matching markers.
func (mv *MapView) SyncFavorites(ctx context.Context) error {
	startTime := time.Now()
	favorites, err := mv.backend.GetFavorites(ctx)
	mv.metrics.RequestSeconds.WithLabelValues(backend.EndpointFavorites).Observe(time.Since(startTime).Seconds())
	if err != nil {
		mv.metrics.BackendErrors.WithLabelValues(backend.EndpointFavorites).Inc()
		return fmt.Errorf("failed to get favorites: %w", err)
	}

	pageIDs := make(map[int]struct{}, len(favorites))
	for _, favorite := range favorites {
		pageIDs[favorite.PageID] = struct{}{}
	}

	mv.mu.Lock()
	marked := mv.layer.MarkFavorites(pageIDs)
	mv.mu.Unlock()

	mv.log.DebugContext(ctx, "Favorites synced", "favorites", len(favorites), "marked", marked)

	return nil
}

// ToggleFavorite adds the landmark to the user's favorites, or removes it when
// it already is one, and updates the marker popup. It returns the new state.
func (mv *MapView) ToggleFavorite(ctx context.Context, pageID int) (bool, error) {
	mv.mu.Lock()
	marker, ok := mv.layer.Find(pageID)
	mv.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: pageid %d", ErrMarkerNotFound, pageID)
	}

	action, endpoint := "add", backend.EndpointAddFavorite
	if marker.Favorite {
		action, endpoint = "remove", backend.EndpointRemoveFavorite
	}

	startTime := time.Now()
	var err error
	if marker.Favorite {
		err = mv.backend.RemoveFavorite(ctx, pageID)
	} else {
		err = mv.backend.AddFavorite(ctx, marker.Landmark)
	}
	mv.metrics.RequestSeconds.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())

	if err != nil {
		mv.metrics.FavoriteToggles.WithLabelValues(action, "failure").Inc()
		mv.metrics.BackendErrors.WithLabelValues(endpoint).Inc()
		mv.log.ErrorContext(ctx, "Failed to toggle favorite", "pageid", pageID, "action", action, "error", err)
		return marker.Favorite, fmt.Errorf("failed to %s favorite: %w", action, err)
	}

	favorite := !marker.Favorite
	mv.mu.Lock()
	mv.layer.SetFavorite(pageID, favorite)
	mv.mu.Unlock()

	mv.metrics.FavoriteToggles.WithLabelValues(action, "success").Inc()
	mv.log.InfoContext(ctx, "Favorite toggled", "pageid", pageID, "favorite", favorite)

	return favorite, nil
}

// View returns the current viewport.
func (mv *MapView) View() viewport.Viewport {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	return mv.view
}

// Markers returns a snapshot of the markers on the map.
func (mv *MapView) Markers() []markers.Marker {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	return mv.layer.Markers()
}

// TileURL returns the tile URL template of the map.
func (mv *MapView) TileURL() string {
	return mv.opts.TileURL
}
