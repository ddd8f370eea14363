package coverage

import "strings"

// Label classifies a grid sample.
type Label uint8

const (
	// Blocked samples are off the surface or on the sampled border.
	Blocked Label = iota
	// Caution samples are on the surface but touch a blocked sample.
	Caution
	// Safe samples are on the surface with no blocked neighbour.
	Safe
)

func (l Label) String() string {
	switch l {
	case Safe:
		return "safe"
	case Caution:
		return "caution"
	default:
		return "blocked"
	}
}

// Symbol returns the single-letter form used in grid dumps: G, Y or R.
func (l Label) Symbol() byte {
	switch l {
	case Safe:
		return 'G'
	case Caution:
		return 'Y'
	default:
		return 'R'
	}
}

// MarshalText encodes the label by name.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Grid holds one label per sample point taken every Gap pixels.
type Grid struct {
	Rows   int
	Cols   int
	Gap    int
	labels []Label
}

// At returns the label of cell (i, j); out of range cells are Blocked.
func (g *Grid) At(i, j int) Label {
	if i < 0 || j < 0 || i >= g.Rows || j >= g.Cols {
		return Blocked
	}
	return g.labels[i*g.Cols+j]
}

// Point returns the pixel coordinate sampled by cell (i, j).
func (g *Grid) Point(i, j int) Point {
	return Point{X: j * g.Gap, Y: i * g.Gap}
}

// Count returns the number of cells carrying label l.
func (g *Grid) Count(l Label) int {
	n := 0
	for _, v := range g.labels {
		if v == l {
			n++
		}
	}
	return n
}

// Symbols returns one string per row, one G/Y/R symbol per cell.
func (g *Grid) Symbols() []string {
	rows := make([]string, g.Rows)
	buf := make([]byte, g.Cols)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			buf[j] = g.At(i, j).Symbol()
		}
		rows[i] = string(buf)
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Symbols(), "\n")
}

func (g *Grid) set(i, j int, l Label) {
	g.labels[i*g.Cols+j] = l
}

// Classify samples the mask every gap pixels and labels each sample.
//
// A sample on the surface starts Safe and everything else Blocked. Safe
// samples with at least one Blocked 8-neighbour become Caution. Finally the
// first and last rows and columns are forced Blocked so that no tour runs
// along the edge of the sampled region. A non-positive gap or an empty mask
// yields an empty grid.
func Classify(mask *Mask, gap int) *Grid {
	if mask == nil || gap <= 0 || mask.Empty() {
		return &Grid{Gap: max(gap, 0)}
	}

	g := &Grid{
		Rows: (mask.Height + gap - 1) / gap,
		Cols: (mask.Width + gap - 1) / gap,
		Gap:  gap,
	}
	g.labels = make([]Label, g.Rows*g.Cols)

	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			p := g.Point(i, j)
			if mask.At(p.X, p.Y) {
				g.set(i, j, Safe)
			}
		}
	}

	// Only Safe cells are relabelled and the check looks for Blocked, so
	// Caution cells written during this pass never spread.
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			if g.At(i, j) != Safe {
				continue
			}
			for _, d := range neighbors8 {
				ni, nj := i+d[0], j+d[1]
				if ni < 0 || nj < 0 || ni >= g.Rows || nj >= g.Cols {
					continue
				}
				if g.At(ni, nj) == Blocked {
					g.set(i, j, Caution)
					break
				}
			}
		}
	}

	last := g.Rows - 1
	for j := 0; j < g.Cols; j++ {
		g.set(0, j, Blocked)
		g.set(last, j, Blocked)
	}
	lastCol := g.Cols - 1
	for i := 0; i < g.Rows; i++ {
		g.set(i, 0, Blocked)
		g.set(i, lastCol, Blocked)
	}

	return g
}

// SelectWaypoints returns the sample coordinates usable as tour nodes in
// row-major order. Safe cells always qualify; Caution cells only when
// allowCaution is set.
func SelectWaypoints(grid *Grid, allowCaution bool) []Point {
	var points []Point
	for i := 0; i < grid.Rows; i++ {
		for j := 0; j < grid.Cols; j++ {
			switch grid.At(i, j) {
			case Safe:
				points = append(points, grid.Point(i, j))
			case Caution:
				if allowCaution {
					points = append(points, grid.Point(i, j))
				}
			}
		}
	}
	return points
}
