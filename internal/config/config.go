package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the map view service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the control API server.
// - Backend: Connection settings of the landmark backend.
// - Geolocation: Source of the initial user position.
// - View: Screen size and zoom thresholds of the map.
// - API: Browser access settings of the control API.
type Config struct {
	Env         string            `yaml:"env"`         // Env is the current environment: local, development, production.
	Port        int               `yaml:"port"`        // Port is the control API server port.
	Backend     BackendConfig     `yaml:"backend"`     // Backend holds the landmark backend configuration.
	Geolocation GeolocationConfig `yaml:"geolocation"` // Geolocation holds the geolocation provider configuration.
	View        ViewConfig        `yaml:"view"`        // View holds the map view configuration.
	API         APIConfig         `yaml:"api"`         // API holds the control API configuration.
}

// BackendConfig holds the details for connecting to the landmark backend.
type BackendConfig struct {
	URL       string        `yaml:"url"`        // URL is the backend base URL.
	Session   string        `yaml:"session"`    // Session is the session cookie value; empty disables favorites.
	Timeout   time.Duration `yaml:"timeout"`    // Timeout bounds every backend request.
	RateLimit int           `yaml:"rate_limit"` // RateLimit is requests per second; zero is unlimited.
}

// GeolocationConfig selects and configures the geolocation provider.
type GeolocationConfig struct {
	Provider  string  `yaml:"provider"`   // Provider is one of google, nominatim, static, disabled.
	APIKey    string  `yaml:"api_key"`    // APIKey is required for Google.
	RateLimit int     `yaml:"rate_limit"` // RateLimit is Google requests per second; zero keeps the client default.
	Address   string  `yaml:"address"`    // Address is resolved by Nominatim.
	Lat       float64 `yaml:"lat"`        // Lat is the static latitude.
	Lon       float64 `yaml:"lon"`        // Lon is the static longitude.
}

// ViewConfig holds the map view settings.
type ViewConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	FetchMinZoom int    `yaml:"fetch_min_zoom"` // Landmarks are fetched when zoom is above this level.
	LocateZoom   int    `yaml:"locate_zoom"`    // Zoom applied after a successful geolocation.
	TileURL      string `yaml:"tile_url"`
}

// APIConfig holds the control API settings.
type APIConfig struct {
	CORSOrigins []string `yaml:"cors_origins"`
	RateLimit   int      `yaml:"rate_limit"` // Mutating requests per minute per client IP.
}

const envPrefix = "LANDMAP"

// MustLoad loads the configuration from the environment, an optional .env file
// and an optional YAML file named by LANDMAP_CONFIG. Environment variables
// take precedence over the file. It panics on values that fail to parse.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	return &Config{
		Env:  v.GetString("env"),
		Port: mustInt(v, "port", "failed to parse port for control server from configuration"),
		Backend: BackendConfig{
			URL:       v.GetString("backend.url"),
			Session:   v.GetString("backend.session"),
			Timeout:   mustDuration(v, "backend.timeout", "failed to parse backend timeout from configuration"),
			RateLimit: mustInt(v, "backend.rate_limit", "failed to parse backend rate limit from configuration"),
		},
		Geolocation: GeolocationConfig{
			Provider:  v.GetString("geolocation.provider"),
			APIKey:    v.GetString("geolocation.api_key"),
			RateLimit: mustInt(v, "geolocation.rate_limit", "failed to parse geolocation rate limit from configuration"),
			Address:   v.GetString("geolocation.address"),
			Lat:       mustFloat(v, "geolocation.lat", "failed to parse geolocation coordinates from configuration"),
			Lon:       mustFloat(v, "geolocation.lon", "failed to parse geolocation coordinates from configuration"),
		},
		View: ViewConfig{
			Width:        mustInt(v, "view.width", "failed to parse view size from configuration"),
			Height:       mustInt(v, "view.height", "failed to parse view size from configuration"),
			FetchMinZoom: mustInt(v, "view.fetch_min_zoom", "failed to parse zoom levels from configuration"),
			LocateZoom:   mustInt(v, "view.locate_zoom", "failed to parse zoom levels from configuration"),
			TileURL:      v.GetString("tile_url"),
		},
		API: APIConfig{
			CORSOrigins: splitList(v.GetStringSlice("api.cors_origins")),
			RateLimit:   mustInt(v, "api.rate_limit", "failed to parse API rate limit from configuration"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("port", "8080")
	v.SetDefault("backend.url", "http://localhost:5000")
	v.SetDefault("backend.session", "")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.rate_limit", "0")
	v.SetDefault("geolocation.provider", "disabled")
	v.SetDefault("geolocation.api_key", "")
	v.SetDefault("geolocation.rate_limit", "0")
	v.SetDefault("geolocation.address", "")
	v.SetDefault("geolocation.lat", "0")
	v.SetDefault("geolocation.lon", "0")
	v.SetDefault("view.width", "1024")
	v.SetDefault("view.height", "768")
	v.SetDefault("view.fetch_min_zoom", "10")
	v.SetDefault("view.locate_zoom", "13")
	v.SetDefault("tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("api.cors_origins", "*")
	v.SetDefault("api.rate_limit", "0")
}

func mustInt(v *viper.Viper, key, msg string) int {
	value, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(msg)
	}
	return value
}

func mustFloat(v *viper.Viper, key, msg string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		panic(msg)
	}
	return value
}

func mustDuration(v *viper.Viper, key, msg string) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(msg)
	}
	return value
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
