package models

// Landmark is a point of interest returned by the landmark backend for a viewport.
// It is transient: a fresh set arrives with every fetch.
type Landmark struct {
	PageID int     `json:"pageid"` // PageID is the Wikipedia page identifier.
	Title  string  `json:"title"`  // Title is the page title shown in the popup.
	Lat    float64 `json:"lat"`    // Lat is the latitude of the landmark.
	Lon    float64 `json:"lon"`    // Lon is the longitude of the landmark.
	Dist   float64 `json:"dist"`   // Dist is the distance in meters from the query center.
}

// Favorite is a landmark bookmarked by the current user. The server owns it;
// the client only mirrors it in popup content.
type Favorite struct {
	PageID int     `json:"pageid"`
	Title  string  `json:"title"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// FavoriteFromLandmark builds the favorite payload for a landmark.
func FavoriteFromLandmark(l Landmark) Favorite {
	return Favorite{PageID: l.PageID, Title: l.Title, Lat: l.Lat, Lon: l.Lon}
}
