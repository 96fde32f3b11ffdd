// Package geolocation answers "where is the user?" for the map view.
// Providers range from the Google Geolocation API to fixed coordinates.
package geolocation

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/landmap/internal/models"
)

// Common errors shared by providers.
var (
	// ErrPermissionDenied is returned when the position source refuses to answer.
	ErrPermissionDenied = errors.New("geolocation permission denied")
	// ErrUnavailable is returned when no position source is configured.
	ErrUnavailable = errors.New("geolocation not available")
)

// Provider is an interface that defines a method for locating the user.
// The Locate method takes a context and returns the current coordinates
// or an error if the position cannot be determined.
type Provider interface {
	Locate(ctx context.Context) (*models.Coordinates, error)
}
