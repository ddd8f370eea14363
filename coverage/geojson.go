package coverage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Feature kinds written to the "kind" property of exported features.
const (
	FeatureWaypoint = "waypoint"
	FeaturePath     = "path"
)

func toOrb(p Point) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}

// LineString converts the path to an orb line string in pixel space.
func (p PixelPath) LineString() orb.LineString {
	ls := make(orb.LineString, len(p))
	for i, pt := range p {
		ls[i] = toOrb(pt)
	}
	return ls
}

// Length returns the Euclidean length of the path in pixels.
func (p PixelPath) Length() float64 {
	return planar.Length(p.LineString())
}

// FeatureCollection exports the plan in image pixel coordinates. Every
// waypoint becomes a point feature carrying its node index, tour position
// and label; the stitched path becomes a single line string feature.
func (r *Result) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	order := make(map[int]int, len(r.Tour))
	for pos, idx := range r.Tour {
		if pos < len(r.Tour)-1 {
			order[idx] = pos
		}
	}

	for i, wp := range r.Waypoints {
		f := geojson.NewFeature(toOrb(wp))
		f.Properties["kind"] = FeatureWaypoint
		f.Properties["index"] = i
		if pos, ok := order[i]; ok {
			f.Properties["order"] = pos
		}
		if r.Grid != nil && r.Grid.Gap > 0 {
			f.Properties["label"] = r.Grid.At(wp.Y/r.Grid.Gap, wp.X/r.Grid.Gap).String()
		}
		fc.Append(f)
	}

	if len(r.Path) > 0 {
		f := geojson.NewFeature(r.Path.LineString())
		f.Properties["kind"] = FeaturePath
		f.Properties["tourCost"] = r.TourCost
		f.Properties["length"] = r.Path.Length()
		fc.Append(f)
	}

	return fc
}

// ResultFromFeatureCollection restores waypoints, tour and path from an
// exported collection. The grid is not part of the export and stays nil.
// Missing geometry or wrongly typed properties are reported as errors.
func ResultFromFeatureCollection(fc *geojson.FeatureCollection) (*Result, error) {
	result := &Result{Path: PixelPath{}}
	type ordered struct{ index, order int }
	var orders []ordered

	for i, f := range fc.Features {
		kind, err := stringProperty(f.Properties, "kind", "")
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		switch kind {
		case FeatureWaypoint:
			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				return nil, fmt.Errorf("feature %d: waypoint has %s geometry", i, geometryType(f.Geometry))
			}
			idx, err := intProperty(f.Properties, "index", len(result.Waypoints))
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			if idx != len(result.Waypoints) {
				return nil, fmt.Errorf("feature %d: waypoint index %d out of sequence", i, idx)
			}
			result.Waypoints = append(result.Waypoints, Point{X: int(pt[0]), Y: int(pt[1])})
			if _, ok := f.Properties["order"]; ok {
				pos, err := intProperty(f.Properties, "order", -1)
				if err != nil {
					return nil, fmt.Errorf("feature %d: %w", i, err)
				}
				orders = append(orders, ordered{index: idx, order: pos})
			}
		case FeaturePath:
			ls, ok := f.Geometry.(orb.LineString)
			if !ok {
				return nil, fmt.Errorf("feature %d: path has %s geometry", i, geometryType(f.Geometry))
			}
			for _, p := range ls {
				result.Path = append(result.Path, Point{X: int(p[0]), Y: int(p[1])})
			}
			if result.TourCost, err = intProperty(f.Properties, "tourCost", 0); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}
	}

	if len(orders) > 0 {
		tour := make(Tour, len(orders)+1)
		for _, o := range orders {
			if o.order < 0 || o.order >= len(orders) {
				return nil, fmt.Errorf("tour position %d out of range", o.order)
			}
			tour[o.order] = o.index
		}
		tour[len(orders)] = tour[0]
		if err := tour.Validate(len(result.Waypoints)); err != nil {
			return nil, fmt.Errorf("invalid tour: %w", err)
		}
		result.Tour = tour
	}
	return result, nil
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "no"
	}
	return g.GeoJSONType()
}

// stringProperty reads an optional string property.
func stringProperty(p geojson.Properties, key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("property %q is %T, want string", key, v)
	}
	return s, nil
}

// intProperty reads an optional whole-number property. JSON numbers
// decode as float64; values set in memory may still be int.
func intProperty(p geojson.Properties, key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("property %q = %g is not a whole number", key, n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("property %q is %T, want number", key, v)
}

// SavePlan writes the plan as an indented GeoJSON feature collection.
func SavePlan(r *Result, filename string) error {
	data, err := json.MarshalIndent(r.FeatureCollection(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// LoadPlan reads a plan written by SavePlan.
func LoadPlan(filename string) (*Result, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return ResultFromFeatureCollection(fc)
}
