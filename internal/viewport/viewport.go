// Package viewport implements web-mercator math for the visible map rectangle:
// its geographic bounds, the search radius derived from them, panning and
// zooming in screen pixels, and the set of map tiles that cover it.
package viewport

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/maptile"
)

const (
	// TileSize is the edge length of a map tile in pixels.
	TileSize = 256
	// MinZoom is the lowest zoom level (whole world in one tile).
	MinZoom = 0
	// MaxZoom is the highest zoom level served by OpenStreetMap tiles.
	MaxZoom = 19
	// MaxSize is the largest accepted screen edge in pixels.
	MaxSize = 8192
	// MaxPan is the largest accepted pan delta in pixels: the world width at MaxZoom.
	MaxPan = TileSize << MaxZoom

	maxLatitude = 85.0511287798
)

// Viewport describes what is visible on screen: a center point, an integer
// zoom level and the screen size in pixels.
type Viewport struct {
	Center orb.Point // Center of the view, lon/lat.
	Zoom   int       // Zoom level in [MinZoom, MaxZoom].
	Width  int       // Screen width in pixels.
	Height int       // Screen height in pixels.
}

// New returns a viewport with zoom and latitude clamped to the valid web-mercator range.
func New(center orb.Point, zoom, width, height int) Viewport {
	return Viewport{
		Center: clampPoint(center),
		Zoom:   clampZoom(zoom),
		Width:  clampSize(width),
		Height: clampSize(height),
	}
}

// Bounds returns the geographic rectangle covered by the viewport.
func (v Viewport) Bounds() orb.Bound {
	cx, cy := worldPixel(v.Center, v.Zoom)
	halfW := float64(v.Width) / 2
	halfH := float64(v.Height) / 2

	southWest := pixelToPoint(cx-halfW, cy+halfH, v.Zoom)
	northEast := pixelToPoint(cx+halfW, cy-halfH, v.Zoom)

	return orb.Bound{Min: southWest, Max: northEast}
}

// Radius returns the distance in meters from the center of the bounds to
// their north-east corner.
func (v Viewport) Radius() float64 {
	bounds := v.Bounds()
	northEast := orb.Point{bounds.Right(), bounds.Top()}
	return geo.DistanceHaversine(northEast, bounds.Center())
}

// Panned returns the viewport moved by a screen delta. Positive dx moves the
// view east, positive dy moves it south, matching a drag in the opposite direction.
// A delta that is not a finite number leaves the viewport unchanged.
func (v Viewport) Panned(dx, dy float64) Viewport {
	cx, cy := worldPixel(v.Center, v.Zoom)
	moved := pixelToPoint(cx+dx, cy+dy, v.Zoom)
	if !isFinite(moved[0]) || !isFinite(moved[1]) {
		return v
	}
	v.Center = clampPoint(moved)
	return v
}

// Zoomed returns the viewport at another zoom level around the same center.
func (v Viewport) Zoomed(zoom int) Viewport {
	v.Zoom = clampZoom(zoom)
	return v
}

// Resized returns the viewport with a new screen size.
func (v Viewport) Resized(width, height int) Viewport {
	v.Width = clampSize(width)
	v.Height = clampSize(height)
	return v
}

// Tiles returns the tiles needed to paint the viewport. Columns wrap around
// the antimeridian; rows are clamped to the world.
func (v Viewport) Tiles() maptile.Tiles {
	cx, cy := worldPixel(v.Center, v.Zoom)
	halfW := float64(v.Width) / 2
	halfH := float64(v.Height) / 2

	n := 1 << v.Zoom
	minX := int(math.Floor((cx - halfW) / TileSize))
	maxX := int(math.Floor((cx + halfW - 1) / TileSize))
	minY := max(int(math.Floor((cy-halfH)/TileSize)), 0)
	maxY := min(int(math.Floor((cy+halfH-1)/TileSize)), n-1)

	if maxX-minX+1 > n {
		maxX = minX + n - 1
	}

	tiles := make(maptile.Tiles, 0, (maxX-minX+1)*(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		wrapped := ((x % n) + n) % n
		for y := minY; y <= maxY; y++ {
			tiles = append(tiles, maptile.New(uint32(wrapped), uint32(y), maptile.Zoom(v.Zoom)))
		}
	}

	return tiles
}

// worldPixel converts a point into world pixel coordinates at the given zoom.
func worldPixel(p orb.Point, zoom int) (float64, float64) {
	f := maptile.Fraction(p, maptile.Zoom(zoom))
	return f[0] * TileSize, f[1] * TileSize
}

// pixelToPoint converts world pixel coordinates back into a lon/lat point.
func pixelToPoint(x, y float64, zoom int) orb.Point {
	size := float64(TileSize) * math.Pow(2, float64(zoom))
	lng := x/size*360 - 180
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*y/size)))
	return orb.Point{lng, latRad * 180 / math.Pi}
}

func clampZoom(zoom int) int {
	return max(MinZoom, min(zoom, MaxZoom))
}

func clampSize(size int) int {
	return max(1, min(size, MaxSize))
}

// clampPoint wraps longitude into [-180, 180) and clamps latitude to the
// mercator range. Non-finite coordinates collapse to zero.
func clampPoint(p orb.Point) orb.Point {
	lng, lat := p[0], p[1]
	if !isFinite(lng) {
		lng = 0
	}
	if !isFinite(lat) {
		lat = 0
	}
	if lng < -180 || lng >= 180 {
		lng = math.Mod(lng+180, 360)
		if lng < 0 {
			lng += 360
		}
		lng -= 180
	}
	return orb.Point{lng, max(-maxLatitude, min(lat, maxLatitude))}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
