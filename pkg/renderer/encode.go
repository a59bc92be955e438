package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// maxChannel keeps a fully lit channel at 255 after scaling by 255.99
const maxChannel = 0.999

// Frame holds the per-pixel sample sums of a render. Row 0 is the top of the image.
type Frame struct {
	Width  int
	Height int
	Pixels []PixelStats // Row-major, Width*Height entries
}

// NewFrame allocates an empty frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]PixelStats, width*height),
	}
}

// At returns the pixel at column x of image row y
func (f *Frame) At(x, y int) *PixelStats {
	return &f.Pixels[y*f.Width+x]
}

// Row returns the pixels of image row y
func (f *Frame) Row(y int) []PixelStats {
	return f.Pixels[y*f.Width : (y+1)*f.Width]
}

// Image encodes the frame as 8-bit RGBA, optionally gamma-2 corrected
func (f *Frame) Image(gamma bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x, ps := range f.Row(y) {
			img.SetRGBA(x, y, ToRGBA(ps.ColorAccum, ps.SampleCount, gamma))
		}
	}
	return img
}

// ToRGBA converts a summed sample color into an 8-bit pixel. The sum is divided
// by samples, optionally square-rooted, clamped to [0, 0.999] and scaled by 255.99.
func ToRGBA(sum core.Vec3, samples int, gamma bool) color.RGBA {
	if samples <= 0 {
		return color.RGBA{A: 255}
	}
	c := sum.Multiply(1.0 / float64(samples))
	return color.RGBA{
		R: encodeChannel(c.X, gamma),
		G: encodeChannel(c.Y, gamma),
		B: encodeChannel(c.Z, gamma),
		A: 255,
	}
}

func encodeChannel(v float64, gamma bool) uint8 {
	// NaN fails every comparison, so it lands on zero with the negatives
	if !(v > 0) {
		return 0
	}
	if gamma {
		v = math.Sqrt(v)
	}
	v = min(v, maxChannel)
	return uint8(255.99 * v)
}
