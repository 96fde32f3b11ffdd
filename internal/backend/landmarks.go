package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/UnknownOlympus/landmap/internal/models"
	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
)

var errInvalidJSON = errors.New("failed to decode landmarks response: invalid JSON")

// landmarksEnvelope is the wrapped payload shape: {"landmarks": [...]}.
type landmarksEnvelope struct {
	Landmarks *[]models.Landmark `json:"landmarks"`
}

// GetLandmarks asks the backend for landmarks within radius meters of center.
// It accepts both a bare JSON array and an object with a "landmarks" array.
// Valid JSON of any other shape yields ErrMalformedPayload, and so does an
// error status whose body is JSON, since it carries no landmark list either.
func (c *Client) GetLandmarks(ctx context.Context, center orb.Point, radius float64) ([]models.Landmark, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(center.Lat(), 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(center.Lon(), 'f', -1, 64))
	query.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))

	raw, err := c.do(ctx, http.MethodGet, EndpointLandmarks, query, nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && json.Valid(statusErr.Body) {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return nil, err
	}

	landmarks, err := decodeLandmarks(raw)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to parse landmarks response", "error", err, "body", string(raw))
		return nil, err
	}

	c.log.DebugContext(ctx, "Landmarks received", "count", len(landmarks))

	return landmarks, nil
}

func decodeLandmarks(raw []byte) ([]models.Landmark, error) {
	if !json.Valid(raw) {
		return nil, errInvalidJSON
	}

	trimmed := bytes.TrimSpace(raw)

	switch trimmed[0] {
	case '[':
		var landmarks []models.Landmark
		if err := json.Unmarshal(trimmed, &landmarks); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return landmarks, nil
	case '{':
		var envelope landmarksEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		if envelope.Landmarks == nil {
			return nil, ErrMalformedPayload
		}
		return *envelope.Landmarks, nil
	default:
		return nil, ErrMalformedPayload
	}
}
