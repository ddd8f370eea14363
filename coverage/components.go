package coverage

// Component is an 8-connected region of surface pixels.
type Component struct {
	Label    int   // 1-based, in row-major order of first pixel
	Area     int   // number of pixels
	Centroid Point // mean pixel position, truncated and clamped to the mask
}

// Components labels the 8-connected surface regions of mask. The returned
// label slice is row-major with 0 for background.
func Components(mask *Mask) ([]int, []Component) {
	labels := make([]int, mask.Width*mask.Height)
	var comps []Component
	queue := make([]int, 0, 64)

	for start := range labels {
		if labels[start] != 0 || !mask.bits[start] {
			continue
		}
		id := len(comps) + 1
		labels[start] = id
		queue = append(queue[:0], start)
		var sumX, sumY, area int

		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			x, y := p%mask.Width, p/mask.Width
			sumX += x
			sumY += y
			area++

			for _, d := range neighbors8 {
				nx, ny := x+d[1], y+d[0]
				if !mask.At(nx, ny) {
					continue
				}
				np := ny*mask.Width + nx
				if labels[np] == 0 {
					labels[np] = id
					queue = append(queue, np)
				}
			}
		}

		comps = append(comps, Component{
			Label: id,
			Area:  area,
			Centroid: Point{
				X: min(max(sumX/area, 0), mask.Width-1),
				Y: min(max(sumY/area, 0), mask.Height-1),
			},
		})
	}
	return labels, comps
}

// LargestComponent returns a mask holding only the biggest surface region
// (the first one in row-major order on ties) and its description. A mask
// with no surface is returned as an empty copy with ok false.
func LargestComponent(mask *Mask) (*Mask, Component, bool) {
	labels, comps := Components(mask)
	out := NewMask(mask.Width, mask.Height)
	if len(comps) == 0 {
		return out, Component{}, false
	}

	best := comps[0]
	for _, c := range comps[1:] {
		if c.Area > best.Area {
			best = c
		}
	}
	for i, l := range labels {
		out.bits[i] = l == best.Label
	}
	return out, best, true
}
