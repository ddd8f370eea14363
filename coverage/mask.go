package coverage

import "fmt"

// Mask is a binary occupancy field over an image. A true pixel belongs to
// the surface being inspected.
type Mask struct {
	Width  int
	Height int
	bits   []bool
}

// MaxMaskPixels bounds the area of any mask. Router parent links are
// stored as int32, so this must stay below 1<<31.
const MaxMaskPixels = 1 << 28

// CheckSize reports whether a width × height mask fits in limit pixels.
// The product is never formed, so huge dimensions cannot overflow.
func CheckSize(width, height, limit int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("mask size %dx%d is negative: %w", width, height, ErrInvalidMask)
	}
	limit = min(limit, MaxMaskPixels)
	if width > 0 && height > limit/width {
		return fmt.Errorf("mask size %dx%d exceeds %d pixels: %w", width, height, limit, ErrMaskTooLarge)
	}
	return nil
}

// NewMask creates an all-false mask of the given size.
// Negative dimensions are treated as zero. It panics when the area
// exceeds MaxMaskPixels; callers taking sizes from input use CheckSize
// first.
func NewMask(width, height int) *Mask {
	width = max(width, 0)
	height = max(height, 0)
	if err := CheckSize(width, height, MaxMaskPixels); err != nil {
		panic(err)
	}
	return &Mask{
		Width:  width,
		Height: height,
		bits:   make([]bool, width*height),
	}
}

// MaskFromRows builds a mask from equally sized rows. Any rune other than
// '0', '.' or ' ' marks a surface pixel.
func MaskFromRows(rows []string) (*Mask, error) {
	if len(rows) == 0 {
		return NewMask(0, 0), nil
	}
	width := len(rows[0])
	if err := CheckSize(width, len(rows), MaxMaskPixels); err != nil {
		return nil, err
	}
	m := NewMask(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", y, len(row), width, ErrInvalidMask)
		}
		for x := 0; x < width; x++ {
			switch row[x] {
			case '0', '.', ' ':
			default:
				m.Set(x, y, true)
			}
		}
	}
	return m, nil
}

// At reports whether (x, y) is on the surface. Out of bounds is false.
func (m *Mask) At(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.bits[y*m.Width+x]
}

// Set marks (x, y). Out of bounds writes are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if !m.In(x, y) {
		return
	}
	m.bits[y*m.Width+x] = v
}

// In reports whether (x, y) lies inside the mask.
func (m *Mask) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// Empty reports whether the mask has no pixels at all.
func (m *Mask) Empty() bool {
	return m.Width == 0 || m.Height == 0
}

// Area counts surface pixels.
func (m *Mask) Area() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Fill sets every pixel of the rectangle [x0,x1) × [y0,y1) to v.
func (m *Mask) Fill(x0, y0, x1, y1 int, v bool) {
	for y := max(y0, 0); y < min(y1, m.Height); y++ {
		for x := max(x0, 0); x < min(x1, m.Width); x++ {
			m.bits[y*m.Width+x] = v
		}
	}
}

// Clone returns an independent copy.
func (m *Mask) Clone() *Mask {
	c := &Mask{Width: m.Width, Height: m.Height, bits: make([]bool, len(m.bits))}
	copy(c.bits, m.bits)
	return c
}
