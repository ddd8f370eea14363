package coverage

import (
	"fmt"
)

// Options tunes a Planner. The zero value plans with the defaults.
type Options struct {
	// ExactNodes is the largest waypoint count solved exactly. Zero means
	// ExactLimit; values above ExactLimit are rejected.
	ExactNodes int
	// OffSurfaceCost is the per-step cost outside the surface. Zero means
	// DefaultOffSurfaceCost.
	OffSurfaceCost float64
	// Anchor, when set, makes the waypoint nearest to it the tour start.
	Anchor *Point
	// LargestComponentOnly plans over the biggest connected surface region.
	LargestComponentOnly bool
	// Logf receives progress messages. Nil is silent.
	Logf func(format string, v ...any)
}

// Result carries every artifact of one planning run.
type Result struct {
	Grid      *Grid     `json:"-"`
	Waypoints []Point   `json:"waypoints"`
	Tour      Tour      `json:"tour"`
	TourCost  int       `json:"tourCost"`
	Path      PixelPath `json:"path"`
}

// Insufficient reports whether fewer than two waypoints qualified, in
// which case there is no tour and the path is empty.
func (r *Result) Insufficient() bool {
	return len(r.Waypoints) < 2
}

// Start returns the waypoint the tour starts and ends at.
func (r *Result) Start() (Point, bool) {
	if len(r.Tour) == 0 {
		return Point{}, false
	}
	return r.Waypoints[r.Tour[0]], true
}

// Planner runs the sweep planning pipeline with fixed options.
type Planner struct {
	opts Options
}

// NewPlanner validates opts and returns a planner.
func NewPlanner(opts Options) (*Planner, error) {
	if opts.ExactNodes < 0 || opts.ExactNodes > ExactLimit {
		return nil, fmt.Errorf("exact node limit %d outside [0,%d]", opts.ExactNodes, ExactLimit)
	}
	if opts.OffSurfaceCost != 0 && opts.OffSurfaceCost <= SurfaceCost {
		return nil, fmt.Errorf("off-surface cost %g must exceed surface cost %g", opts.OffSurfaceCost, SurfaceCost)
	}
	if opts.ExactNodes == 0 {
		opts.ExactNodes = ExactLimit
	}
	if opts.OffSurfaceCost == 0 {
		opts.OffSurfaceCost = DefaultOffSurfaceCost
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	return &Planner{opts: opts}, nil
}

// Plan classifies mask, selects waypoints, solves the tour and stitches
// the pixel path using the default options.
func Plan(mask *Mask, gap int, allowCaution bool) (*Result, error) {
	p, _ := NewPlanner(Options{})
	return p.Plan(mask, gap, allowCaution)
}

// Plan runs the pipeline. Fewer than two waypoints is not an error: the
// result then has no tour and an empty path.
func (p *Planner) Plan(mask *Mask, gap int, allowCaution bool) (*Result, error) {
	if mask == nil {
		return nil, ErrInvalidMask
	}
	if gap <= 0 {
		return nil, fmt.Errorf("gap %d: %w", gap, ErrInvalidGap)
	}
	logf := p.opts.Logf

	if p.opts.LargestComponentOnly {
		largest, comp, ok := LargestComponent(mask)
		if ok {
			logf("   Largest surface component: %d pixels, centroid (%d, %d)", comp.Area, comp.Centroid.X, comp.Centroid.Y)
		}
		mask = largest
	}

	grid := Classify(mask, gap)
	logf("   Grid %dx%d (gap %d): %d safe, %d caution, %d blocked",
		grid.Rows, grid.Cols, gap, grid.Count(Safe), grid.Count(Caution), grid.Count(Blocked))

	waypoints := SelectWaypoints(grid, allowCaution)
	result := &Result{Grid: grid, Waypoints: waypoints, Path: PixelPath{}}
	if result.Insufficient() {
		logf("   Only %d waypoint(s) selected, nothing to plan", len(waypoints))
		return result, nil
	}

	if p.opts.Anchor != nil {
		anchor := NewWaypointIndex(waypoints).Nearest(*p.opts.Anchor)
		waypoints = moveToFront(waypoints, anchor)
		result.Waypoints = waypoints
		logf("   Tour anchored at waypoint (%d, %d)", waypoints[0].X, waypoints[0].Y)
	}

	dist := NewDistanceMatrix(waypoints)
	tour, err := Solver{ExactNodes: p.opts.ExactNodes}.Solve(dist)
	if err != nil {
		return nil, fmt.Errorf("solve tour: %w", err)
	}
	result.Tour = tour
	result.TourCost = tour.Cost(dist)
	mode := "heuristic"
	if len(waypoints) <= p.opts.ExactNodes {
		mode = "exact"
	}
	logf("   Tour over %d waypoints (%s): cost %d", len(waypoints), mode, result.TourCost)

	path, err := NewRouter(mask, p.opts.OffSurfaceCost).Stitch(tour, waypoints)
	if err != nil {
		return nil, fmt.Errorf("stitch path: %w", err)
	}
	result.Path = path
	logf("   Stitched path: %d pixels", len(path))

	return result, nil
}

// moveToFront returns a copy of points with points[i] first and the rest
// in their original order.
func moveToFront(points []Point, i int) []Point {
	out := make([]Point, 0, len(points))
	out = append(out, points[i])
	out = append(out, points[:i]...)
	return append(out, points[i+1:]...)
}
