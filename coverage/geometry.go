package coverage

// Point is a pixel coordinate in image space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Chebyshev returns max(|dx|, |dy|), the number of 8-directional steps
// between two pixels on an unobstructed grid.
func Chebyshev(a, b Point) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// neighbors8 lists the index offsets of the 8-connected neighbourhood
var neighbors8 = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
