package coverage

import (
	"github.com/dhconnelly/rtreego"
)

// waypointEntry wraps a waypoint for R-tree storage
type waypointEntry struct {
	Index int
	Point Point
	BBox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *waypointEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// WaypointIndex answers proximity queries over a waypoint set.
type WaypointIndex struct {
	tree   *rtreego.Rtree
	points []Point
}

// NewWaypointIndex indexes points by their position in the slice.
func NewWaypointIndex(points []Point) *WaypointIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for i, p := range points {
		tree.Insert(&waypointEntry{
			Index: i,
			Point: p,
			BBox:  toRTreePoint(p).ToRect(0.5),
		})
	}

	return &WaypointIndex{tree: tree, points: points}
}

// Len returns the number of indexed waypoints.
func (wi *WaypointIndex) Len() int {
	return wi.tree.Size()
}

// Nearest returns the index of the waypoint closest to p in Euclidean
// distance, preferring the lowest index on ties. It returns -1 when the
// index is empty.
func (wi *WaypointIndex) Nearest(p Point) int {
	if wi.tree.Size() == 0 {
		return -1
	}
	nearest := wi.tree.NearestNeighbor(toRTreePoint(p)).(*waypointEntry)
	best := squaredDistance(nearest.Point, p)

	// Equidistant waypoints can be returned in any order; widen the
	// search to the square that contains all of them.
	r := float64(isqrt(best)) + 1
	candidates := wi.Within(Point{X: p.X - int(r), Y: p.Y - int(r)}, Point{X: p.X + int(r), Y: p.Y + int(r)})
	idx := nearest.Index
	for _, c := range candidates {
		if d := squaredDistance(wi.points[c], p); d < best || (d == best && c < idx) {
			best, idx = d, c
		}
	}
	return idx
}

// Within returns the indices of waypoints inside the closed rectangle
// spanned by lo and hi, in ascending order.
func (wi *WaypointIndex) Within(lo, hi Point) []int {
	bbox, err := rtreego.NewRect(
		rtreego.Point{float64(lo.X) - 0.5, float64(lo.Y) - 0.5},
		[]float64{float64(hi.X-lo.X) + 1, float64(hi.Y-lo.Y) + 1},
	)
	if err != nil {
		return []int{}
	}

	results := wi.tree.SearchIntersect(bbox)
	seen := make([]bool, len(wi.points))
	for _, item := range results {
		seen[item.(*waypointEntry).Index] = true
	}
	indices := make([]int, 0, len(results))
	for i, ok := range seen {
		if ok {
			indices = append(indices, i)
		}
	}
	return indices
}

func toRTreePoint(p Point) rtreego.Point {
	return rtreego.Point{float64(p.X), float64(p.Y)}
}

func squaredDistance(a, b Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// isqrt returns floor(sqrt(v)) for v >= 0.
func isqrt(v int) int {
	r := 0
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}
