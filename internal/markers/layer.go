// Package markers holds the map pins rendered for the current landmark set
// and the popup HTML attached to each of them.
package markers

import "github.com/UnknownOlympus/landmap/internal/models"

// Marker is a map pin bound to one landmark.
type Marker struct {
	ID       int             `json:"id"`       // ID is the handle of the marker within the layer.
	Landmark models.Landmark `json:"landmark"` // Landmark is the point the marker is bound to.
	Favorite bool            `json:"favorite"` // Favorite mirrors the server-side favorite relation.
	Popup    string          `json:"popup"`    // Popup is the rendered popup HTML.
}

// Layer is the list of markers currently on the map. It is not safe for
// concurrent use; the owner serializes access.
type Layer struct {
	markers []*Marker
	nextID  int
}

// NewLayer creates an empty marker layer.
func NewLayer() *Layer {
	return &Layer{}
}

// Len returns the number of markers on the layer.
func (l *Layer) Len() int {
	return len(l.markers)
}

// Clear removes every marker and returns how many were removed.
func (l *Layer) Clear() int {
	removed := len(l.markers)
	l.markers = nil
	return removed
}

// Add places a marker for the landmark and returns a copy of it.
func (l *Layer) Add(landmark models.Landmark) Marker {
	l.nextID++
	marker := &Marker{
		ID:       l.nextID,
		Landmark: landmark,
		Popup:    RenderPopup(landmark, false),
	}
	l.markers = append(l.markers, marker)
	return *marker
}

// Replace clears the layer and adds one marker per landmark, in order.
// It returns the number of markers removed.
func (l *Layer) Replace(landmarks []models.Landmark) int {
	removed := l.Clear()
	l.markers = make([]*Marker, 0, len(landmarks))
	for _, landmark := range landmarks {
		l.Add(landmark)
	}
	return removed
}

// Markers returns a snapshot of the markers.
func (l *Layer) Markers() []Marker {
	snapshot := make([]Marker, 0, len(l.markers))
	for _, marker := range l.markers {
		snapshot = append(snapshot, *marker)
	}
	return snapshot
}

// Find returns the first marker bound to the page.
func (l *Layer) Find(pageID int) (Marker, bool) {
	for _, marker := range l.markers {
		if marker.Landmark.PageID == pageID {
			return *marker, true
		}
	}
	return Marker{}, false
}

// SetFavorite updates the favorite flag and popup of every marker bound to the
// page. It reports whether any marker matched.
func (l *Layer) SetFavorite(pageID int, favorite bool) bool {
	found := false
	for _, marker := range l.markers {
		if marker.Landmark.PageID != pageID {
			continue
		}
		found = true
		if marker.Favorite == favorite {
			continue
		}
		marker.Favorite = favorite
		marker.Popup = RenderPopup(marker.Landmark, favorite)
	}
	return found
}

// MarkFavorites sets the favorite flag of every marker from the given set of
// page IDs and returns how many markers are favorites afterwards.
func (l *Layer) MarkFavorites(pageIDs map[int]struct{}) int {
	count := 0
	for _, marker := range l.markers {
		_, favorite := pageIDs[marker.Landmark.PageID]
		if marker.Favorite != favorite {
			marker.Favorite = favorite
			marker.Popup = RenderPopup(marker.Landmark, favorite)
		}
		if favorite {
			count++
		}
	}
	return count
}
