package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/UnknownOlympus/landmap/internal/models"
	"github.com/goccy/go-json"
)

// removeFavoriteRequest is the body of the remove_favorite endpoint.
type removeFavoriteRequest struct {
	PageID int `json:"pageid"`
}

// AddFavorite bookmarks a landmark for the current session.
func (c *Client) AddFavorite(ctx context.Context, landmark models.Landmark) error {
	c.log.DebugContext(ctx, "Adding favorite", "pageid", landmark.PageID)
	return c.mutate(ctx, EndpointAddFavorite, models.FavoriteFromLandmark(landmark))
}

// RemoveFavorite drops a bookmark of the current session.
func (c *Client) RemoveFavorite(ctx context.Context, pageID int) error {
	c.log.DebugContext(ctx, "Removing favorite", "pageid", pageID)
	return c.mutate(ctx, EndpointRemoveFavorite, removeFavoriteRequest{PageID: pageID})
}

// GetFavorites lists the bookmarks of the current session.
func (c *Client) GetFavorites(ctx context.Context) ([]models.Favorite, error) {
	raw, err := c.do(ctx, http.MethodGet, EndpointFavorites, nil, nil)
	if err != nil {
		return nil, err
	}

	var favorites []models.Favorite
	if err = json.Unmarshal(raw, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites response: %w", err)
	}

	return favorites, nil
}
