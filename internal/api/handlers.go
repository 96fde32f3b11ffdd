package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/landmap/internal/backend"
	"github.com/UnknownOlympus/landmap/internal/mapview"
	"github.com/UnknownOlympus/landmap/internal/markers"
	"github.com/UnknownOlympus/landmap/internal/viewport"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
)

const maxBodyBytes = 1 << 16

type boundsResponse struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type viewResponse struct {
	Lat         float64        `json:"lat"`
	Lon         float64        `json:"lon"`
	Zoom        int            `json:"zoom"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Bounds      boundsResponse `json:"bounds"`
	Radius      float64        `json:"radius"`
	Tiles       []string       `json:"tiles"`
	Attribution string         `json:"attribution"`
}

type moveResponse struct {
	View    viewResponse `json:"view"`
	Fetched bool         `json:"fetched"`
}

type favoriteResponse struct {
	PageID   int  `json:"pageid"`
	Favorite bool `json:"favorite"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type setViewRequest struct {
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Zoom *int     `json:"zoom"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type zoomRequest struct {
	Delta int `json:"delta"`
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

// GetView returns the current viewport.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.describe(h.view.View()))
}

// SetView recenters the map.
func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var req setViewRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lon == nil || req.Zoom == nil {
		h.writeError(w, r, http.StatusBadRequest, "lat, lon and zoom are required")
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
		h.writeError(w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}
	if *req.Zoom < viewport.MinZoom || *req.Zoom > viewport.MaxZoom {
		h.writeError(w, r, http.StatusBadRequest, "zoom out of range")
		return
	}

	fetched := h.view.SetView(r.Context(), orb.Point{*req.Lon, *req.Lat}, *req.Zoom)
	h.writeMove(w, r, fetched)
}

// Pan moves the map by a screen delta.
func (h *Handler) Pan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if !h.decode(w, r, &req) {
		return
	}
	if math.Abs(req.DX) > viewport.MaxPan || math.Abs(req.DY) > viewport.MaxPan {
		h.writeError(w, r, http.StatusBadRequest, "pan delta out of range")
		return
	}

	fetched := h.view.Pan(r.Context(), req.DX, req.DY)
	h.writeMove(w, r, fetched)
}

// Zoom changes the zoom level.
func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if !h.decode(w, r, &req) {
		return
	}

	fetched := h.view.Zoom(r.Context(), req.Delta)
	h.writeMove(w, r, fetched)
}

// Resize changes the screen size.
func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "width and height must be positive")
		return
	}
	if req.Width > viewport.MaxSize || req.Height > viewport.MaxSize {
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("width and height must not exceed %d", viewport.MaxSize))
		return
	}

	fetched := h.view.Resize(r.Context(), req.Width, req.Height)
	h.writeMove(w, r, fetched)
}

// ListMarkers returns the markers currently on the map.
func (h *Handler) ListMarkers(w http.ResponseWriter, r *http.Request) {
	list := h.view.Markers()
	if list == nil {
		list = []markers.Marker{}
	}
	h.writeJSON(w, r, http.StatusOK, list)
}

// ToggleFavorite flips the favorite state of a marker.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	pageID, err := strconv.Atoi(chi.URLParam(r, "pageid"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid pageid")
		return
	}

	favorite, err := h.view.ToggleFavorite(r.Context(), pageID)
	switch {
	case err == nil:
		h.writeJSON(w, r, http.StatusOK, favoriteResponse{PageID: pageID, Favorite: favorite})
	case errors.Is(err, mapview.ErrMarkerNotFound):
		h.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, backend.ErrUnauthorized):
		h.writeError(w, r, http.StatusUnauthorized, err.Error())
	default:
		h.writeError(w, r, http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) describe(v viewport.Viewport) viewResponse {
	bounds := v.Bounds()
	return viewResponse{
		Lat:    v.Center.Lat(),
		Lon:    v.Center.Lon(),
		Zoom:   v.Zoom,
		Width:  v.Width,
		Height: v.Height,
		Bounds: boundsResponse{
			South: bounds.Bottom(),
			West:  bounds.Left(),
			North: bounds.Top(),
			East:  bounds.Right(),
		},
		Radius:      v.Radius(),
		Tiles:       v.TileURLs(h.view.TileURL()),
		Attribution: viewport.OSMAttribution,
	}
}

func (h *Handler) writeMove(w http.ResponseWriter, r *http.Request, fetched bool) {
	h.writeJSON(w, r, http.StatusOK, moveResponse{View: h.describe(h.view.View()), Fetched: fetched})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.ErrorContext(r.Context(), "Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		h.log.WarnContext(r.Context(), "Failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, errorResponse{Error: msg})
}
