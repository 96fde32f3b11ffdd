package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/landmap/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider locates the host through the Google Maps Geolocation API.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the subset of the Google Maps client used by the provider.
type GoogleAPIClient interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// ErrEmptyResponse is returned when the Geolocation API responds without a result.
var ErrEmptyResponse = errors.New("get empty response from Google Geolocation API")

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Locate asks the Geolocation API for the host position, allowing it to fall
// back to IP geolocation when no Wi-Fi or cell data is available.
func (gp *GoogleProvider) Locate(ctx context.Context) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Locating using Google Geolocation API")

	req := maps.GeolocationRequest{ConsiderIP: true}
	result, err := gp.client.Geolocate(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geolocate: %w", err)
	}

	if result == nil {
		return nil, ErrEmptyResponse
	}

	gp.log.DebugContext(ctx, "Google geolocation result",
		"lat", result.Location.Lat, "lon", result.Location.Lng, "accuracy", result.Accuracy)

	return &models.Coordinates{Longitude: result.Location.Lng, Latitude: result.Location.Lat}, nil
}
