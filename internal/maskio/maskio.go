// Package maskio turns segmentation output into occupancy masks. The
// segmentation model itself stays outside: anything that can produce an
// image, or surface polygons in pixel coordinates, can feed the planner.
package maskio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"wall-planner/coverage"
)

// DefaultThreshold separates surface from background in grayscale masks.
const DefaultThreshold = 127

// Producer converts an image into an occupancy mask. Segmentation backends
// plug in here without the planner knowing about them.
type Producer func(img image.Image) (*coverage.Mask, error)

// Threshold returns a Producer that marks pixels whose luminance exceeds t
// as surface, or at most t when invert is set.
func Threshold(t uint8, invert bool) Producer {
	return func(img image.Image) (*coverage.Mask, error) {
		if img == nil {
			return nil, fmt.Errorf("nil image: %w", coverage.ErrInvalidMask)
		}
		b := img.Bounds()
		if err := coverage.CheckSize(b.Dx(), b.Dy(), coverage.MaxMaskPixels); err != nil {
			return nil, err
		}
		m := coverage.NewMask(b.Dx(), b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				g := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
				if invert {
					g = 255 - g
				}
				m.Set(x-b.Min.X, y-b.Min.Y, g > t)
			}
		}
		return m, nil
	}
}

// Decode reads an image in any registered format: PNG, JPEG, GIF, BMP,
// TIFF or WebP.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask image: %w", err)
	}
	return img, nil
}

// DecodeSize reads only the image header and returns its dimensions, so
// oversized uploads can be refused before their pixels are decoded.
func DecodeSize(r io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read mask image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// LoadImage decodes the image stored at path.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask image: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Load reads a mask image and thresholds it at DefaultThreshold.
func Load(path string) (*coverage.Mask, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return Threshold(DefaultThreshold, false)(img)
}

// Resize scales img to width × height with nearest-neighbour sampling so
// that a mask computed at model resolution lines up with the source
// image. Nearest-neighbour keeps the mask binary.
func Resize(img image.Image, width, height int) image.Image {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ToImage renders a mask as black background and white surface.
func ToImage(m *coverage.Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
