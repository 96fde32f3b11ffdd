package viewport

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

const (
	// OSMTileURL is the default OpenStreetMap tile template.
	OSMTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	// OSMAttribution must be displayed next to OpenStreetMap tiles.
	OSMAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

var subdomains = []string{"a", "b", "c"}

// TileURL expands a {s}/{z}/{x}/{y} template for the given tile.
func TileURL(tile maptile.Tile, template string) string {
	sub := subdomains[int(tile.X+tile.Y)%len(subdomains)]
	replacer := strings.NewReplacer(
		"{s}", sub,
		"{z}", strconv.FormatUint(uint64(tile.Z), 10),
		"{x}", strconv.FormatUint(uint64(tile.X), 10),
		"{y}", strconv.FormatUint(uint64(tile.Y), 10),
	)
	return replacer.Replace(template)
}

// TileURLs expands the template for every tile in the viewport.
func (v Viewport) TileURLs(template string) []string {
	tiles := v.Tiles()
	urls := make([]string, 0, len(tiles))
	for _, tile := range tiles {
		urls = append(urls, TileURL(tile, template))
	}
	return urls
}
