package geolocation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/landmap/internal/models"
	"github.com/goccy/go-json"
)

// NominatimBaseURL is the public OpenStreetMap Nominatim search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// nominatimUserAgent must identify the application per the Nominatim usage policy:
// https://operations.osmfoundation.org/policies/nominatim/
const nominatimUserAgent = "Landmap/1.0 (https://github.com/UnknownOlympus/landmap)"

// NominatimProvider locates the user by resolving a configured home address
// through OpenStreetMap's Nominatim API. Hosts without Wi-Fi or cell data use
// it in place of device geolocation.
type NominatimProvider struct {
	client    HTTPClient   // HTTP client for making requests
	baseURL   string       // Base URL for the Nominatim API
	address   string       // Address to resolve
	log       *slog.Logger // Logger for logging operations
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat string `json:"lat"` // Latitude as string
	Lon string `json:"lon"` // Longitude as string
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a Nominatim provider using the public endpoint.
func NewNominatimProvider(address string, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, address, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, address string, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   NominatimBaseURL,
		address:   strings.TrimSpace(address),
		log:       log,
		userAgent: nominatimUserAgent,
	}
}

// Locate resolves the configured address. When the full address is unknown it
// retries with progressively shorter prefixes ("street, city, country" ->
// "street, city" -> "street"), stopping at the first hit.
func (np *NominatimProvider) Locate(ctx context.Context) (*models.Coordinates, error) {
	if np.address == "" {
		return nil, ErrUnavailable
	}

	np.log.DebugContext(ctx, "Locating using Nominatim", "address", np.address)

	variations := addressFallbacks(np.address)
	for idx, variation := range variations {
		coords, err := np.search(ctx, variation)
		if err == nil {
			if idx > 0 {
				np.log.InfoContext(ctx, "Located using fallback address",
					"original", np.address,
					"fallback", variation,
					"fallback_level", idx)
			}
			return coords, nil
		}

		if !errors.Is(err, ErrNominatimEmptyResponse) {
			return nil, err
		}

		np.log.DebugContext(ctx, "Address variation returned no results, trying fallback",
			"variation", variation,
			"fallback_level", idx)
	}

	np.log.WarnContext(ctx, "All address fallbacks exhausted",
		"address", np.address,
		"variations_tried", len(variations))
	return nil, ErrNominatimEmptyResponse
}

// addressFallbacks lists the address followed by its comma-separated prefixes, longest first.
func addressFallbacks(address string) []string {
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	seen := make(map[string]bool)
	variations := []string{}
	for end := len(parts); end > 0; end-- {
		v := strings.Join(parts[:end], ", ")
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	return variations
}

// search performs a single Nominatim request without fallback logic.
func (np *NominatimProvider) search(ctx context.Context, address string) (*models.Coordinates, error) {
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geolocation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: nominatim API returned status 403", ErrPermissionDenied)
	case resp.StatusCode != http.StatusOK:
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
