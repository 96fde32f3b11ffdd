package geolocation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/landmap/internal/models"
	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geolocation provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents the Google Maps Geolocation API.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim resolves a configured address through OpenStreetMap Nominatim.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeStatic answers with fixed coordinates.
	ProviderTypeStatic ProviderType = "static"
	// ProviderTypeDisabled has no position source.
	ProviderTypeDisabled ProviderType = "disabled"
)

// ProviderConfig holds configuration for creating a geolocation provider.
type ProviderConfig struct {
	Type        ProviderType       // Type of provider to create
	APIKey      string             // API key (used by Google provider)
	RateLimit   int                // Rate limit for requests per second (used by Google provider)
	Address     string             // Home address (used by Nominatim provider)
	Coordinates models.Coordinates // Fixed position (used by static provider)
	Logger      *slog.Logger       // Logger for the provider
}

// NewProvider creates a geolocation provider based on the provided configuration.
//
// Supported provider types:
// - "google": Google Maps Geolocation API (requires API key)
// - "nominatim": resolve a home address with OpenStreetMap Nominatim
// - "static": fixed coordinates
// - "disabled" or empty: no position source
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		if config.Address == "" {
			return nil, errors.New("address is required for Nominatim provider")
		}
		return NewNominatimProvider(config.Address, config.Logger), nil
	case ProviderTypeStatic:
		return NewStaticProvider(config.Coordinates), nil
	case ProviderTypeDisabled, "":
		return DisabledProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGoogleProvider creates a Google Maps geolocation provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}

	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}
