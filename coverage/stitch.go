package coverage

import (
	"container/heap"
	"fmt"
	"math"
)

const (
	// SurfaceCost is the cost of stepping onto a surface pixel.
	SurfaceCost = 1.0
	// DefaultOffSurfaceCost is the cost of stepping onto a pixel outside
	// the surface. It is finite so that two waypoints on disconnected
	// patches of surface can still be joined.
	DefaultOffSurfaceCost = 1e6
)

// PixelPath is a sequence of 8-connected pixel coordinates.
type PixelPath []Point

// node is an entry in the search frontier
type node struct {
	pixel int
	g     float64
	f     float64
	index int
}

// priorityQueue implements heap.Interface ordered by f, then g descending
// so that ties favour nodes closer to the goal.
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].g > pq[j].g
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*pq = old[:last]
	return n
}

// Router finds minimum-cost 8-connected routes over a mask. Stepping onto
// a surface pixel costs SurfaceCost, stepping anywhere else costs
// OffSurfaceCost. A Router reuses its buffers between searches and is not
// safe for concurrent use.
type Router struct {
	mask           *Mask
	offSurfaceCost float64

	open    map[int]*node
	closed  []bool
	parent  []int32 // pixel indices; masks never exceed MaxMaskPixels
	visited []int
}

// Parent links fit in int32 only while MaxMaskPixels does.
const _ = uint32(math.MaxInt32 - MaxMaskPixels)

// NewRouter prepares a router over mask. offSurfaceCost values not greater
// than SurfaceCost fall back to DefaultOffSurfaceCost.
func NewRouter(mask *Mask, offSurfaceCost float64) *Router {
	if offSurfaceCost <= SurfaceCost {
		offSurfaceCost = DefaultOffSurfaceCost
	}
	size := 0
	if mask != nil {
		size = mask.Width * mask.Height
	}
	r := &Router{
		mask:           mask,
		offSurfaceCost: offSurfaceCost,
		open:           make(map[int]*node),
		closed:         make([]bool, size),
		parent:         make([]int32, size),
	}
	for i := range r.parent {
		r.parent[i] = -1
	}
	return r
}

func (r *Router) cost(x, y int) float64 {
	if r.mask.At(x, y) {
		return SurfaceCost
	}
	return r.offSurfaceCost
}

// heuristic is admissible because every step costs at least SurfaceCost
// and moves the Chebyshev distance by at most one.
func (r *Router) heuristic(pixel int, goal Point) float64 {
	p := Point{X: pixel % r.mask.Width, Y: pixel / r.mask.Width}
	return float64(Chebyshev(p, goal)) * SurfaceCost
}

// Route returns the cheapest path from one pixel to another, both ends
// included, together with its total cost.
func (r *Router) Route(from, to Point) (PixelPath, float64, error) {
	if r.mask == nil || r.mask.Empty() {
		return nil, 0, fmt.Errorf("empty mask: %w", ErrUnsolvableSegment)
	}
	if !r.mask.In(from.X, from.Y) || !r.mask.In(to.X, to.Y) {
		return nil, 0, fmt.Errorf("route %v -> %v leaves %dx%d mask: %w",
			from, to, r.mask.Width, r.mask.Height, ErrUnsolvableSegment)
	}
	defer r.reset()

	w := r.mask.Width
	start := from.Y*w + from.X
	goal := to.Y*w + to.X

	openSet := &priorityQueue{}
	heap.Init(openSet)
	startNode := &node{pixel: start, f: r.heuristic(start, to)}
	heap.Push(openSet, startNode)
	r.open[start] = startNode
	r.visited = append(r.visited, start)

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*node)
		delete(r.open, current.pixel)

		if current.pixel == goal {
			return r.reconstruct(start, goal), current.g, nil
		}
		r.closed[current.pixel] = true

		cx, cy := current.pixel%w, current.pixel/w
		for _, d := range neighbors8 {
			nx, ny := cx+d[1], cy+d[0]
			if !r.mask.In(nx, ny) {
				continue
			}
			next := ny*w + nx
			if r.closed[next] {
				continue
			}

			tentativeG := current.g + r.cost(nx, ny)
			neighbor, exists := r.open[next]
			if !exists {
				neighbor = &node{pixel: next, g: tentativeG}
				neighbor.f = tentativeG + r.heuristic(next, to)
				heap.Push(openSet, neighbor)
				r.open[next] = neighbor
				r.parent[next] = int32(current.pixel)
				r.visited = append(r.visited, next)
			} else if tentativeG < neighbor.g {
				neighbor.f -= neighbor.g - tentativeG
				neighbor.g = tentativeG
				r.parent[next] = int32(current.pixel)
				heap.Fix(openSet, neighbor.index)
			}
		}
	}

	// Unreachable on a non-empty 8-connected grid.
	return nil, 0, fmt.Errorf("route %v -> %v: %w", from, to, ErrUnsolvableSegment)
}

func (r *Router) reconstruct(start, goal int) PixelPath {
	w := r.mask.Width
	n := 1
	for p := goal; p != start; p = int(r.parent[p]) {
		n++
	}
	path := make(PixelPath, n)
	p := goal
	for i := n - 1; i >= 0; i-- {
		path[i] = Point{X: p % w, Y: p / w}
		if i > 0 {
			p = int(r.parent[p])
		}
	}
	return path
}

func (r *Router) reset() {
	for _, p := range r.visited {
		r.closed[p] = false
		r.parent[p] = -1
	}
	r.visited = r.visited[:0]
	clear(r.open)
}

// Stitch routes every consecutive pair of waypoints in tour over mask with
// the default off-surface cost and joins the segments into one path.
func Stitch(mask *Mask, tour Tour, waypoints []Point) (PixelPath, error) {
	return NewRouter(mask, DefaultOffSurfaceCost).Stitch(tour, waypoints)
}

// Stitch joins the per-edge routes of tour. The first point of every
// segment after the first is dropped because it repeats the previous
// segment's last point.
func (r *Router) Stitch(tour Tour, waypoints []Point) (PixelPath, error) {
	var path PixelPath
	for k := 0; k+1 < len(tour); k++ {
		u, v := tour[k], tour[k+1]
		if u < 0 || v < 0 || u >= len(waypoints) || v >= len(waypoints) {
			return nil, fmt.Errorf("tour edge %d (%d -> %d) outside %d waypoints: %w",
				k, u, v, len(waypoints), ErrDegenerateInput)
		}
		seg, _, err := r.Route(waypoints[u], waypoints[v])
		if err != nil {
			return nil, fmt.Errorf("tour edge %d (%d -> %d): %w", k, u, v, err)
		}
		if len(path) > 0 {
			seg = seg[1:]
		}
		path = append(path, seg...)
	}
	return path, nil
}
