package api_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/landmap/internal/api"
	"github.com/UnknownOlympus/landmap/internal/backend"
	"github.com/UnknownOlympus/landmap/internal/mapview"
	"github.com/UnknownOlympus/landmap/internal/metrics"
	"github.com/UnknownOlympus/landmap/internal/models"
	"github.com/UnknownOlympus/landmap/test/mocks"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type viewBody struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Zoom   int     `json:"zoom"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Bounds struct {
		South float64 `json:"south"`
		West  float64 `json:"west"`
		North float64 `json:"north"`
		East  float64 `json:"east"`
	} `json:"bounds"`
	Radius      float64  `json:"radius"`
	Tiles       []string `json:"tiles"`
	Attribution string   `json:"attribution"`
}

type moveBody struct {
	View    viewBody `json:"view"`
	Fetched bool     `json:"fetched"`
}

type markerBody struct {
	ID       int             `json:"id"`
	Landmark models.Landmark `json:"landmark"`
	Favorite bool            `json:"favorite"`
	Popup    string          `json:"popup"`
}

type favoriteBody struct {
	PageID   int  `json:"pageid"`
	Favorite bool `json:"favorite"`
}

type errorBody struct {
	Error string `json:"error"`
}

func newTestServer(t *testing.T, opts api.Options) (http.Handler, *mocks.Backend) {
	t.Helper()

	mockBackend := mocks.NewBackend(t)
	mockProvider := mocks.NewProvider(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reg := prometheus.NewRegistry()
	view := mapview.NewMapView(logger, mockBackend, mockProvider, metrics.NewMetrics(reg), mapview.Options{})

	return api.NewRouter(logger, view, reg, opts), mockBackend
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t, api.Options{})

	rec := do(t, server, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t, api.Options{})

	do(t, server, http.MethodPost, "/view/zoom", `{"delta":1}`)
	rec := do(t, server, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "landmap_move_events_total")
}

func TestGetView(t *testing.T) {
	server, _ := newTestServer(t, api.Options{})

	rec := do(t, server, http.MethodGet, "/view", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body viewBody
	decodeBody(t, rec, &body)
	assert.InDelta(t, 0.0, body.Lat, 0)
	assert.InDelta(t, 0.0, body.Lon, 0)
	assert.Equal(t, mapview.InitialZoom, body.Zoom)
	assert.Equal(t, mapview.DefaultWidth, body.Width)
	assert.InDelta(t, -180.0, body.Bounds.West, 1e-6)
	assert.InDelta(t, 180.0, body.Bounds.East, 1e-6)
	assert.Len(t, body.Tiles, 16)
	assert.Contains(t, body.Attribution, "OpenStreetMap")
}

func TestSetView(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "invalid json", body: `{"lat":`, wantErr: "invalid JSON body"},
		{name: "missing zoom", body: `{"lat":48.8,"lon":2.3}`, wantErr: "lat, lon and zoom are required"},
		{name: "latitude out of range", body: `{"lat":91,"lon":2.3,"zoom":5}`, wantErr: "coordinates out of range"},
		{name: "zoom out of range", body: `{"lat":48.8,"lon":2.3,"zoom":25}`, wantErr: "zoom out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, api.Options{})

			rec := do(t, server, http.MethodPut, "/view", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body errorBody
			decodeBody(t, rec, &body)
			assert.Equal(t, tt.wantErr, body.Error)
		})
	}

	t.Run("low zoom does not fetch", func(t *testing.T) {
		server, _ := newTestServer(t, api.Options{})

		rec := do(t, server, http.MethodPut, "/view", `{"lat":48.8566,"lon":2.3522,"zoom":10}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body moveBody
		decodeBody(t, rec, &body)
		assert.False(t, body.Fetched)
		assert.Equal(t, 10, body.View.Zoom)
	})

	t.Run("high zoom fetches and renders markers", func(t *testing.T) {
		server, mockBackend := newTestServer(t, api.Options{})
		landmarks := []models.Landmark{
			{PageID: 1, Title: "Louvre", Lat: 48.8606, Lon: 2.3376, Dist: 1297.4},
			{PageID: 2, Title: "Notre-Dame", Lat: 48.853, Lon: 2.3499, Dist: 430},
		}
		mockBackend.On("GetLandmarks", mock.Anything, mock.AnythingOfType("orb.Point"), mock.Anything).
			Return(landmarks, nil).Once()

		rec := do(t, server, http.MethodPut, "/view", `{"lat":48.8566,"lon":2.3522,"zoom":13}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body moveBody
		decodeBody(t, rec, &body)
		assert.True(t, body.Fetched)
		assert.InDelta(t, 48.8566, body.View.Lat, 1e-9)
		assert.InDelta(t, 8044.4, body.View.Radius, 1.0)

		rec = do(t, server, http.MethodGet, "/markers", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list []markerBody
		decodeBody(t, rec, &list)
		require.Len(t, list, 2)
		assert.Equal(t, "Louvre", list[0].Landmark.Title)
		assert.Contains(t, list[0].Popup, "<b>Louvre</b><br>1297.40m<br>")
	})
}

func TestPanZoomResize(t *testing.T) {
	server, _ := newTestServer(t, api.Options{})

	t.Run("pan", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/view/pan", `{"dx":256,"dy":0}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body moveBody
		decodeBody(t, rec, &body)
		assert.False(t, body.Fetched)
		assert.InDelta(t, 90.0, body.View.Lon, 1e-9)
	})

	t.Run("zoom", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/view/zoom", `{"delta":3}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body moveBody
		decodeBody(t, rec, &body)
		assert.Equal(t, 5, body.View.Zoom)
	})

	t.Run("resize", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/view/resize", `{"width":640,"height":480}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body moveBody
		decodeBody(t, rec, &body)
		assert.Equal(t, 640, body.View.Width)
		assert.Equal(t, 480, body.View.Height)
	})

	t.Run("resize rejects empty screen", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/view/resize", `{"width":0,"height":480}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("resize rejects oversized screen", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/view/resize", `{"width":10000000,"height":480}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body errorBody
		decodeBody(t, rec, &body)
		assert.Equal(t, "width and height must not exceed 8192", body.Error)
	})

	t.Run("pan rejects huge delta and the view stays usable", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/view/pan", `{"dx":1e20,"dy":0}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		done := make(chan *httptest.ResponseRecorder, 1)
		go func() { done <- do(t, server, http.MethodGet, "/view", "") }()

		select {
		case rec := <-done:
			assert.Equal(t, http.StatusOK, rec.Code)
		case <-time.After(5 * time.Second):
			t.Fatal("view is blocked after a rejected pan")
		}
	})

	t.Run("empty marker list", func(t *testing.T) {
		rec := do(t, server, http.MethodGet, "/markers", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestToggleFavorite(t *testing.T) {
	server, mockBackend := newTestServer(t, api.Options{})
	louvre := models.Landmark{PageID: 7, Title: "Louvre", Lat: 48.8606, Lon: 2.3376, Dist: 1297.4}
	mockBackend.On("GetLandmarks", mock.Anything, mock.AnythingOfType("orb.Point"), mock.Anything).
		Return([]models.Landmark{louvre}, nil).Once()
	rec := do(t, server, http.MethodPut, "/view", `{"lat":48.8566,"lon":2.3522,"zoom":14}`)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("invalid pageid", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/markers/abc/favorite", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown marker", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/markers/404/favorite", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body errorBody
		decodeBody(t, rec, &body)
		assert.Contains(t, body.Error, "marker not found")
	})

	t.Run("unauthorized backend", func(t *testing.T) {
		mockBackend.On("AddFavorite", mock.Anything, louvre).Return(backend.ErrUnauthorized).Once()

		rec := do(t, server, http.MethodPost, "/markers/7/favorite", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("backend failure", func(t *testing.T) {
		mockBackend.On("AddFavorite", mock.Anything, louvre).Return(backend.ErrRejected).Once()

		rec := do(t, server, http.MethodPost, "/markers/7/favorite", "")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("add then remove", func(t *testing.T) {
		mockBackend.On("AddFavorite", mock.Anything, louvre).Return(nil).Once()
		mockBackend.On("RemoveFavorite", mock.Anything, 7).Return(nil).Once()

		rec := do(t, server, http.MethodPost, "/markers/7/favorite", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body favoriteBody
		decodeBody(t, rec, &body)
		assert.Equal(t, favoriteBody{PageID: 7, Favorite: true}, body)

		rec = do(t, server, http.MethodPost, "/markers/7/favorite", "")
		require.Equal(t, http.StatusOK, rec.Code)
		decodeBody(t, rec, &body)
		assert.Equal(t, favoriteBody{PageID: 7, Favorite: false}, body)
	})
}

func TestCORS(t *testing.T) {
	server, _ := newTestServer(t, api.Options{CORSOrigins: []string{"https://map.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/view", nil)
	req.Header.Set("Origin", "https://map.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, "https://map.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	server, _ := newTestServer(t, api.Options{RateLimit: 1})

	first := do(t, server, http.MethodPost, "/view/pan", `{"dx":1,"dy":0}`)
	second := do(t, server, http.MethodPost, "/view/pan", `{"dx":1,"dy":0}`)
	read := do(t, server, http.MethodGet, "/view", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, read.Code)
}
