package coverage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "plan.geojson")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestLoadPlan_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "null waypoint geometry",
			content: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":null,"properties":{"kind":"waypoint","index":0}}]}`,
			errMsg:  "waypoint has no geometry",
		},
		{
			name:    "null path geometry",
			content: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":null,"properties":{"kind":"path","tourCost":0}}]}`,
			errMsg:  "path has no geometry",
		},
		{
			name:    "path stored as point",
			content: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"kind":"path"}}]}`,
			errMsg:  "path has Point geometry",
		},
		{
			name:    "numeric kind",
			content: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"kind":5}}]}`,
			errMsg:  `property "kind" is float64, want string`,
		},
		{
			name:    "string index",
			content: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"kind":"waypoint","index":"a"}}]}`,
			errMsg:  `property "index" is string, want number`,
		},
		{
			name:    "fractional order",
			content: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"kind":"waypoint","index":0,"order":0.5}}]}`,
			errMsg:  `property "order" = 0.5 is not a whole number`,
		},
		{
			name:    "string tour cost",
			content: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{"kind":"path","tourCost":"high"}}]}`,
			errMsg:  `property "tourCost" is string, want number`,
		},
		{
			name:    "tour position out of range",
			content: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"kind":"waypoint","index":0,"order":3}}]}`,
			errMsg:  "tour position 3 out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				result *Result
				err    error
			)
			require.NotPanics(t, func() {
				result, err = LoadPlan(writePlanFile(t, tt.content))
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, result)
		})
	}
}

func TestLoadPlan_IgnoresForeignFeatures(t *testing.T) {
	content := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":null,"properties":{"note":"annotation"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[4,6]},"properties":{"kind":"waypoint","index":0,"order":0}}
	]}`

	result, err := LoadPlan(writePlanFile(t, content))
	require.NoError(t, err)
	assert.Equal(t, []Point{{X: 4, Y: 6}}, result.Waypoints)
	assert.Equal(t, Tour{0, 0}, result.Tour)
}
