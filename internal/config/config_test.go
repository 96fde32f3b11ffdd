package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/landmap/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadDefaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.URL)
	assert.Empty(t, cfg.Backend.Session)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 0, cfg.Backend.RateLimit)
	assert.Equal(t, "disabled", cfg.Geolocation.Provider)
	assert.Equal(t, 0, cfg.Geolocation.RateLimit)
	assert.Equal(t, 1024, cfg.View.Width)
	assert.Equal(t, 768, cfg.View.Height)
	assert.Equal(t, 10, cfg.View.FetchMinZoom)
	assert.Equal(t, 13, cfg.View.LocateZoom)
	assert.Equal(t, "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", cfg.View.TileURL)
	assert.Equal(t, []string{"*"}, cfg.API.CORSOrigins)
	assert.Equal(t, 0, cfg.API.RateLimit)
}

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("LANDMAP_ENV", "local")
	t.Setenv("LANDMAP_PORT", "9090")
	t.Setenv("LANDMAP_BACKEND_URL", "https://landmarks.example.com")
	t.Setenv("LANDMAP_BACKEND_SESSION", "s3cr3t")
	t.Setenv("LANDMAP_BACKEND_TIMEOUT", "3s")
	t.Setenv("LANDMAP_BACKEND_RATE_LIMIT", "5")
	t.Setenv("LANDMAP_GEOLOCATION_PROVIDER", "static")
	t.Setenv("LANDMAP_GEOLOCATION_RATE_LIMIT", "10")
	t.Setenv("LANDMAP_GEOLOCATION_LAT", "48.8566")
	t.Setenv("LANDMAP_GEOLOCATION_LON", "2.3522")
	t.Setenv("LANDMAP_VIEW_FETCH_MIN_ZOOM", "12")
	t.Setenv("LANDMAP_API_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LANDMAP_API_RATE_LIMIT", "60")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://landmarks.example.com", cfg.Backend.URL)
	assert.Equal(t, "s3cr3t", cfg.Backend.Session)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5, cfg.Backend.RateLimit)
	assert.Equal(t, "static", cfg.Geolocation.Provider)
	assert.Equal(t, 10, cfg.Geolocation.RateLimit)
	assert.InDelta(t, 48.8566, cfg.Geolocation.Lat, 1e-9)
	assert.InDelta(t, 2.3522, cfg.Geolocation.Lon, 1e-9)
	assert.Equal(t, 12, cfg.View.FetchMinZoom)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.API.CORSOrigins)
	assert.Equal(t, 60, cfg.API.RateLimit)
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "landmap.yaml")
	filet.File(t, path, `
env: development
port: 8181
backend:
  url: http://backend:5000
  timeout: 4s
geolocation:
  provider: nominatim
  address: Kyiv, Ukraine
view:
  width: 800
  height: 600
api:
  cors_origins:
    - https://map.example.com
`)

	t.Setenv("LANDMAP_CONFIG", path)
	t.Setenv("LANDMAP_PORT", "7070")

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 7070, cfg.Port, "environment overrides the file")
	assert.Equal(t, "http://backend:5000", cfg.Backend.URL)
	assert.Equal(t, 4*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "nominatim", cfg.Geolocation.Provider)
	assert.Equal(t, "Kyiv, Ukraine", cfg.Geolocation.Address)
	assert.Equal(t, 800, cfg.View.Width)
	assert.Equal(t, 600, cfg.View.Height)
	assert.Equal(t, 13, cfg.View.LocateZoom, "defaults fill keys missing from the file")
	assert.Equal(t, []string{"https://map.example.com"}, cfg.API.CORSOrigins)
}

func TestMustLoad_MissingFile(t *testing.T) {
	t.Setenv("LANDMAP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.PanicsWithValue(t, "failed to read configuration file", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("LANDMAP_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for control server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_TimeoutError(t *testing.T) {
	t.Setenv("LANDMAP_BACKEND_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse backend timeout from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_CoordinatesError(t *testing.T) {
	t.Setenv("LANDMAP_GEOLOCATION_LAT", "north")

	assert.PanicsWithValue(t, "failed to parse geolocation coordinates from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_ZoomError(t *testing.T) {
	t.Setenv("LANDMAP_VIEW_LOCATE_ZOOM", "close")

	assert.PanicsWithValue(t, "failed to parse zoom levels from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_GeolocationRateLimitError(t *testing.T) {
	t.Setenv("LANDMAP_GEOLOCATION_RATE_LIMIT", "fast")

	assert.PanicsWithValue(t, "failed to parse geolocation rate limit from configuration", func() {
		config.MustLoad()
	})
}
