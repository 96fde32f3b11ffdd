package geolocation

import (
	"context"

	"github.com/UnknownOlympus/landmap/internal/models"
)

// StaticProvider always answers with the same configured position.
type StaticProvider struct {
	coords models.Coordinates
}

// NewStaticProvider creates a provider for a fixed position.
func NewStaticProvider(coords models.Coordinates) *StaticProvider {
	return &StaticProvider{coords: coords}
}

// Locate returns the configured position.
func (sp *StaticProvider) Locate(_ context.Context) (*models.Coordinates, error) {
	coords := sp.coords
	return &coords, nil
}

// DisabledProvider models a host without any position source.
type DisabledProvider struct{}

// Locate always fails with ErrUnavailable.
func (DisabledProvider) Locate(_ context.Context) (*models.Coordinates, error) {
	return nil, ErrUnavailable
}
