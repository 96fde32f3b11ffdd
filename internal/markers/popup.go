package markers

import (
	"strconv"
	"strings"

	"github.com/UnknownOlympus/landmap/internal/models"
	g "github.com/maragudk/gomponents"
	h "github.com/maragudk/gomponents/html"
)

// Favorite button actions carried in data-action.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Popup builds the popup content of a landmark marker: the bold title, the
// distance from the query center, and a favorite toggle button. The nodes are
// siblings with no wrapping element.
func Popup(landmark models.Landmark, favorite bool) []g.Node {
	action, label := ActionAdd, "Add to favorites"
	if favorite {
		action, label = ActionRemove, "Remove from favorites"
	}

	return []g.Node{
		h.B(g.Text(landmark.Title)),
		h.Br(),
		g.Textf("%.2fm", landmark.Dist),
		h.Br(),
		h.Button(
			h.Type("button"),
			h.Class("favorite-btn"),
			g.Attr("data-pageid", strconv.Itoa(landmark.PageID)),
			g.Attr("data-action", action),
			g.Text(label),
		),
	}
}

// RenderPopup renders Popup to an HTML string.
func RenderPopup(landmark models.Landmark, favorite bool) string {
	var b strings.Builder
	for _, node := range Popup(landmark, favorite) {
		// strings.Builder never returns a write error.
		_ = node.Render(&b)
	}
	return b.String()
}
