package coverage

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"
)

// bruteForceCost enumerates every ordering of nodes 1..n-1 and returns the
// cheapest closed tour cost through node 0.
func bruteForceCost(dist DistanceMatrix) int {
	n := dist.Size()
	best := math.MaxInt
	gen := combin.NewPermutationGenerator(n-1, n-1)
	perm := make([]int, n-1)
	for gen.Next() {
		gen.Permutation(perm)
		cost, prev := 0, 0
		for _, p := range perm {
			cost += dist[prev][p+1]
			prev = p + 1
		}
		cost += dist[prev][0]
		best = min(best, cost)
	}
	return best
}

func randomPoints(rng *rand.Rand, n, span int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: rng.Intn(span), Y: rng.Intn(span)}
	}
	return pts
}

func TestDistanceMatrix_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dist := NewDistanceMatrix(randomPoints(rng, 25, 500))

	for i := 0; i < dist.Size(); i++ {
		assert.Zero(t, dist[i][i])
		for j := 0; j < dist.Size(); j++ {
			assert.Equal(t, dist[i][j], dist[j][i], "dist[%d][%d]", i, j)
		}
	}
}

func TestChebyshev(t *testing.T) {
	assert.Equal(t, 7, Chebyshev(Point{0, 0}, Point{7, -3}))
	assert.Equal(t, 4, Chebyshev(Point{2, 9}, Point{-1, 5}))
	assert.Zero(t, Chebyshev(Point{3, 3}, Point{3, 3}))
}

func TestSolve_Degenerate(t *testing.T) {
	_, err := Solve(DistanceMatrix{})
	assert.ErrorIs(t, err, ErrDegenerateInput)

	_, err = Solve(DistanceMatrix{{0}})
	assert.ErrorIs(t, err, ErrDegenerateInput)

	_, err = Solve(DistanceMatrix{{0, 1}, {1}})
	assert.ErrorIs(t, err, ErrDegenerateInput)

	_, err = SolveHeuristic(DistanceMatrix{{0}})
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestSolve_TwoNodes(t *testing.T) {
	tour, err := Solve(DistanceMatrix{{0, 4}, {4, 0}})
	require.NoError(t, err)
	assert.Equal(t, Tour{0, 1, 0}, tour)
	assert.Equal(t, 8, tour.Cost(DistanceMatrix{{0, 4}, {4, 0}}))
}

func TestSolveExact_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 2; n <= ExactLimit; n++ {
		for trial := 0; trial < 3; trial++ {
			dist := NewDistanceMatrix(randomPoints(rng, n, 200))
			tour, err := Solve(dist)
			require.NoError(t, err)
			require.NoError(t, tour.Validate(n))
			assert.Equal(t, bruteForceCost(dist), tour.Cost(dist), "n=%d trial=%d", n, trial)
		}
	}
}

func TestSolveExact_NonMetricMatrix(t *testing.T) {
	// Asymmetric-looking costs that break the triangle inequality still
	// get the true optimum.
	dist := DistanceMatrix{
		{0, 1, 9, 9, 2},
		{1, 0, 1, 9, 9},
		{9, 1, 0, 1, 9},
		{9, 9, 1, 0, 1},
		{2, 9, 9, 1, 0},
	}
	tour, err := SolveExact(dist)
	require.NoError(t, err)
	assert.Equal(t, 6, tour.Cost(dist))
	assert.Equal(t, bruteForceCost(dist), tour.Cost(dist))
}

func TestSolveExact_RejectsLargeInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := SolveExact(NewDistanceMatrix(randomPoints(rng, ExactLimit+1, 100)))
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestSolveHeuristic_ValidAndLocallyOptimal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{11, 25, 60} {
		dist := NewDistanceMatrix(randomPoints(rng, n, 1000))
		tour, err := Solve(dist)
		require.NoError(t, err)
		require.NoError(t, tour.Validate(n))
		assertTwoOptOptimal(t, tour, dist)
	}
}

func assertTwoOptOptimal(t *testing.T, tour Tour, dist DistanceMatrix) {
	t.Helper()
	n := len(tour) - 1
	for i := 1; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			a, b := tour[i-1], tour[i]
			c, d := tour[j], tour[j+1]
			if dist[a][c]+dist[b][d] < dist[a][b]+dist[c][d] {
				t.Fatalf("improving 2-opt move at i=%d j=%d", i, j)
			}
		}
	}
}

func TestSolveHeuristic_ImprovesNearestNeighbor(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	dist := NewDistanceMatrix(randomPoints(rng, 40, 1000))

	greedy := nearestNeighbor(dist)
	require.NoError(t, greedy.Validate(40))

	tour, err := SolveHeuristic(dist)
	require.NoError(t, err)
	assert.LessOrEqual(t, tour.Cost(dist), greedy.Cost(dist))
}

func TestSolveHeuristic_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	dist := NewDistanceMatrix(randomPoints(rng, 30, 400))

	first, err := SolveHeuristic(dist)
	require.NoError(t, err)
	second, err := SolveHeuristic(dist)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSolver_ExactCutoff(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	dist := NewDistanceMatrix(randomPoints(rng, 8, 300))

	exact, err := Solver{ExactNodes: 8}.Solve(dist)
	require.NoError(t, err)
	heuristic, err := Solver{ExactNodes: 4}.Solve(dist)
	require.NoError(t, err)

	require.NoError(t, heuristic.Validate(8))
	assert.LessOrEqual(t, exact.Cost(dist), heuristic.Cost(dist))
	assert.Equal(t, bruteForceCost(dist), exact.Cost(dist))
}

func TestTour_Validate(t *testing.T) {
	assert.NoError(t, Tour{0, 2, 1, 0}.Validate(3))
	assert.Error(t, Tour{0, 1, 0}.Validate(3))
	assert.Error(t, Tour{1, 0, 2, 1}.Validate(3))
	assert.Error(t, Tour{0, 1, 1, 0}.Validate(3))
	assert.Error(t, Tour{0, 5, 1, 0}.Validate(3))
}
