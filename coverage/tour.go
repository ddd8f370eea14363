package coverage

import (
	"fmt"
	"math"
)

// ExactLimit is the largest node count solved with Held-Karp. The table
// grows as 2^(n-1)·n, so raising it trades planning time for optimality.
const ExactLimit = 10

// DistanceMatrix holds symmetric integer travel costs between waypoints.
type DistanceMatrix [][]int

// NewDistanceMatrix builds the Chebyshev distance matrix for points.
func NewDistanceMatrix(points []Point) DistanceMatrix {
	n := len(points)
	dist := make(DistanceMatrix, n)
	for i := range dist {
		dist[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Chebyshev(points[i], points[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// Size returns the number of nodes.
func (d DistanceMatrix) Size() int { return len(d) }

func (d DistanceMatrix) validate() error {
	n := len(d)
	if n < 2 {
		return fmt.Errorf("%d nodes: %w", n, ErrDegenerateInput)
	}
	for i, row := range d {
		if len(row) != n {
			return fmt.Errorf("row %d has %d entries, want %d: %w", i, len(row), n, ErrDegenerateInput)
		}
	}
	return nil
}

// Tour is a closed visiting order over node indices. The first index is
// repeated at the end.
type Tour []int

// Cost sums the edge costs along the tour.
func (t Tour) Cost(dist DistanceMatrix) int {
	total := 0
	for k := 0; k+1 < len(t); k++ {
		total += dist[t[k]][t[k+1]]
	}
	return total
}

// Validate checks that t is a Hamiltonian cycle over n nodes starting and
// ending at node 0.
func (t Tour) Validate(n int) error {
	if len(t) != n+1 {
		return fmt.Errorf("tour has %d entries, want %d", len(t), n+1)
	}
	if t[0] != 0 || t[n] != 0 {
		return fmt.Errorf("tour must start and end at node 0, got %d and %d", t[0], t[n])
	}
	seen := make([]bool, n)
	for _, v := range t[:n] {
		if v < 0 || v >= n {
			return fmt.Errorf("node %d out of range [0,%d)", v, n)
		}
		if seen[v] {
			return fmt.Errorf("node %d visited twice", v)
		}
		seen[v] = true
	}
	return nil
}

// Solver orders waypoints into a closed tour. Matrices with at most
// ExactNodes nodes are solved exactly, larger ones heuristically.
type Solver struct {
	ExactNodes int
}

// Solve uses the package default cutoff.
func Solve(dist DistanceMatrix) (Tour, error) {
	return Solver{ExactNodes: ExactLimit}.Solve(dist)
}

// Solve returns a closed tour anchored at node 0.
func (s Solver) Solve(dist DistanceMatrix) (Tour, error) {
	if err := dist.validate(); err != nil {
		return nil, err
	}
	limit := s.ExactNodes
	if limit <= 0 || limit > ExactLimit {
		limit = ExactLimit
	}
	if dist.Size() <= limit {
		return SolveExact(dist)
	}
	return SolveHeuristic(dist)
}

// SolveExact runs Held-Karp over a dense table indexed by (visited set,
// last node). Node 0 is the fixed anchor and is left out of the set; bit
// k-1 stands for node k.
func SolveExact(dist DistanceMatrix) (Tour, error) {
	if err := dist.validate(); err != nil {
		return nil, err
	}
	n := dist.Size()
	if n > ExactLimit {
		return nil, fmt.Errorf("exact solver limited to %d nodes, got %d: %w", ExactLimit, n, ErrDegenerateInput)
	}

	sets := 1 << (n - 1)
	full := sets - 1
	cost := make([][]int, sets)
	parent := make([][]int, sets)
	for s := range cost {
		cost[s] = make([]int, n)
		parent[s] = make([]int, n)
		for k := range cost[s] {
			cost[s][k] = math.MaxInt
			parent[s][k] = -1
		}
	}

	for k := 1; k < n; k++ {
		s := 1 << (k - 1)
		cost[s][k] = dist[0][k]
		parent[s][k] = 0
	}

	// Subsets are visited in increasing numeric order, which always
	// processes a set before any of its supersets.
	for s := 1; s <= full; s++ {
		for k := 1; k < n; k++ {
			bit := 1 << (k - 1)
			if s&bit == 0 || cost[s][k] == math.MaxInt {
				continue
			}
			for next := 1; next < n; next++ {
				nbit := 1 << (next - 1)
				if s&nbit != 0 {
					continue
				}
				ns := s | nbit
				c := cost[s][k] + dist[k][next]
				if c < cost[ns][next] {
					cost[ns][next] = c
					parent[ns][next] = k
				}
			}
		}
	}

	best, last := math.MaxInt, -1
	for k := 1; k < n; k++ {
		if cost[full][k] == math.MaxInt {
			continue
		}
		if c := cost[full][k] + dist[k][0]; c < best {
			best, last = c, k
		}
	}

	tour := make(Tour, n+1)
	s := full
	for pos := n - 1; pos >= 1; pos-- {
		tour[pos] = last
		prev := parent[s][last]
		s &^= 1 << (last - 1)
		last = prev
	}
	return tour, nil
}

// SolveHeuristic builds a nearest-neighbour tour from node 0 and improves
// it with 2-opt until a full sweep finds no improving reversal.
func SolveHeuristic(dist DistanceMatrix) (Tour, error) {
	if err := dist.validate(); err != nil {
		return nil, err
	}
	tour := nearestNeighbor(dist)
	twoOpt(tour, dist)
	return tour, nil
}

func nearestNeighbor(dist DistanceMatrix) Tour {
	n := dist.Size()
	tour := make(Tour, 0, n+1)
	visited := make([]bool, n)
	tour = append(tour, 0)
	visited[0] = true

	cur := 0
	for len(tour) < n {
		next, best := -1, math.MaxInt
		for k := 1; k < n; k++ {
			if !visited[k] && dist[cur][k] < best {
				next, best = k, dist[cur][k]
			}
		}
		visited[next] = true
		tour = append(tour, next)
		cur = next
	}
	return append(tour, 0)
}

// twoOpt improves tour in place. Edges (a,b) = (tour[i-1], tour[i]) and
// (c,d) = (tour[j], tour[j+1]) are replaced by (a,c) and (b,d) by
// reversing tour[i..j] whenever that strictly shortens the tour.
func twoOpt(tour Tour, dist DistanceMatrix) {
	n := len(tour) - 1
	for improved := true; improved; {
		improved = false
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				a, b := tour[i-1], tour[i]
				c, d := tour[j], tour[j+1]
				if dist[a][c]+dist[b][d] < dist[a][b]+dist[c][d] {
					reverse(tour[i : j+1])
					improved = true
				}
			}
		}
	}
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
