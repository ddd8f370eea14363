package maskio

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"wall-planner/coverage"
)

// FromGeoJSON rasterises the Polygon and MultiPolygon features of a GeoJSON
// feature collection, given in pixel coordinates, into a width × height
// mask. A pixel is surface when its centre lies inside any polygon.
// Other geometry types are skipped. Sizes beyond coverage.MaxMaskPixels
// are rejected before anything is allocated.
func FromGeoJSON(data []byte, width, height int) (*coverage.Mask, error) {
	if err := coverage.CheckSize(width, height, coverage.MaxMaskPixels); err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse surface polygons: %w", err)
	}

	m := coverage.NewMask(width, height)
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			rasterise(m, g)
		case orb.MultiPolygon:
			for _, p := range g {
				rasterise(m, p)
			}
		}
	}
	return m, nil
}

func rasterise(m *coverage.Mask, poly orb.Polygon) {
	if len(poly) == 0 {
		return
	}
	b := poly.Bound()
	x0 := max(int(math.Floor(b.Min[0])), 0)
	y0 := max(int(math.Floor(b.Min[1])), 0)
	x1 := min(int(math.Ceil(b.Max[0])), m.Width-1)
	y1 := min(int(math.Ceil(b.Max[1])), m.Height-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if planar.PolygonContains(poly, orb.Point{float64(x) + 0.5, float64(y) + 0.5}) {
				m.Set(x, y, true)
			}
		}
	}
}
