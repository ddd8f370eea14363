package coverage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_CentreBlockedWithoutCaution(t *testing.T) {
	result, err := Plan(centreBlockedMask(), 20, false)
	require.NoError(t, err)

	assert.True(t, result.Insufficient())
	assert.Empty(t, result.Waypoints)
	assert.Nil(t, result.Tour)
	assert.Empty(t, result.Path)
	assert.Equal(t, 17, result.Grid.Count(Blocked))
	assert.Equal(t, 8, result.Grid.Count(Caution))
	assert.Zero(t, result.Grid.Count(Safe))
}

func TestPlan_CentreBlockedWithCaution(t *testing.T) {
	m := centreBlockedMask()
	result, err := Plan(m, 20, true)
	require.NoError(t, err)

	require.Len(t, result.Waypoints, 8)
	require.NoError(t, result.Tour.Validate(8))
	dist := NewDistanceMatrix(result.Waypoints)
	assert.Equal(t, bruteForceCost(dist), result.TourCost)
	assert.Equal(t, 160, result.TourCost)

	start, ok := result.Start()
	require.True(t, ok)
	assert.Equal(t, start, result.Path[0])
	assert.Equal(t, start, result.Path[len(result.Path)-1])
	assertConnected(t, result.Path)
	for _, p := range result.Path {
		assert.True(t, m.At(p.X, p.Y), "path enters the blocked square at %v", p)
	}
}

func TestPlan_FullFiveByFive(t *testing.T) {
	result, err := Plan(fullMask(50, 50), 10, false)
	require.NoError(t, err)

	require.Len(t, result.Waypoints, 9)
	dist := NewDistanceMatrix(result.Waypoints)
	assert.Equal(t, bruteForceCost(dist), result.TourCost)
	assert.Equal(t, 90, result.TourCost)
	// Every step costs one and the tour never leaves the surface, so the
	// stitched path has one pixel per unit of tour cost plus the start.
	assert.Len(t, result.Path, result.TourCost+1)
}

func TestPlan_HeuristicOnLargeGrid(t *testing.T) {
	result, err := Plan(fullMask(200, 200), 20, false)
	require.NoError(t, err)

	n := len(result.Waypoints)
	require.Equal(t, 64, n)
	require.NoError(t, result.Tour.Validate(n))
	assertTwoOptOptimal(t, result.Tour, NewDistanceMatrix(result.Waypoints))

	assert.Equal(t, result.Waypoints[0], result.Path[0])
	assert.Equal(t, result.Waypoints[0], result.Path[len(result.Path)-1])
	assertConnected(t, result.Path)
	for _, wp := range result.Waypoints {
		assert.Contains(t, result.Path, wp)
	}
}

func TestPlan_InvalidInput(t *testing.T) {
	_, err := Plan(nil, 10, true)
	assert.ErrorIs(t, err, ErrInvalidMask)

	_, err = Plan(fullMask(10, 10), 0, true)
	assert.ErrorIs(t, err, ErrInvalidGap)

	result, err := Plan(NewMask(0, 0), 10, true)
	require.NoError(t, err)
	assert.True(t, result.Insufficient())
}

func TestPlanner_Anchor(t *testing.T) {
	p, err := NewPlanner(Options{Anchor: &Point{X: 64, Y: 58}})
	require.NoError(t, err)

	result, err := p.Plan(centreBlockedMask(), 20, true)
	require.NoError(t, err)

	assert.Equal(t, Point{60, 60}, result.Waypoints[0])
	assert.Equal(t, Point{60, 60}, result.Path[0])
	assert.Equal(t, 160, result.TourCost)
	assert.ElementsMatch(t, SelectWaypoints(result.Grid, true), result.Waypoints)
}

func TestPlanner_LargestComponentOnly(t *testing.T) {
	m := NewMask(120, 60)
	m.Fill(0, 0, 50, 60, true)   // small patch
	m.Fill(60, 0, 120, 60, true) // large patch

	p, err := NewPlanner(Options{LargestComponentOnly: true})
	require.NoError(t, err)
	result, err := p.Plan(m, 10, true)
	require.NoError(t, err)

	require.NotEmpty(t, result.Waypoints)
	for _, wp := range result.Waypoints {
		assert.GreaterOrEqual(t, wp.X, 60, "waypoint %v outside largest component", wp)
	}
}

func TestPlanner_Logf(t *testing.T) {
	var lines []string
	p, err := NewPlanner(Options{Logf: func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	}})
	require.NoError(t, err)

	_, err = p.Plan(fullMask(50, 50), 10, false)
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

func TestNewPlanner_Validation(t *testing.T) {
	_, err := NewPlanner(Options{ExactNodes: ExactLimit + 1})
	assert.Error(t, err)

	_, err = NewPlanner(Options{OffSurfaceCost: 0.5})
	assert.Error(t, err)

	_, err = NewPlanner(Options{ExactNodes: 6, OffSurfaceCost: 50})
	assert.NoError(t, err)
}

func TestSaveLoadPlan(t *testing.T) {
	result, err := Plan(centreBlockedMask(), 20, true)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "plan.geojson")
	require.NoError(t, SavePlan(result, file))

	loaded, err := LoadPlan(file)
	require.NoError(t, err)
	assert.Equal(t, result.Waypoints, loaded.Waypoints)
	assert.Equal(t, result.Tour, loaded.Tour)
	assert.Equal(t, result.Path, loaded.Path)
	assert.Equal(t, result.TourCost, loaded.TourCost)
	assert.Nil(t, loaded.Grid)
}

func TestFeatureCollection(t *testing.T) {
	result, err := Plan(fullMask(50, 50), 10, false)
	require.NoError(t, err)

	fc := result.FeatureCollection()
	require.Len(t, fc.Features, 10)
	for _, f := range fc.Features[:9] {
		assert.Equal(t, FeatureWaypoint, f.Properties["kind"])
		assert.Equal(t, "safe", f.Properties["label"])
	}
	assert.Equal(t, FeaturePath, fc.Features[9].Properties["kind"])
	assert.Equal(t, 90, fc.Features[9].Properties["tourCost"])
}
