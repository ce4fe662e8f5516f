package gifenc

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/soniakeys/quant/median"
)

const (
	maxColors = 256

	// MinSpeed and MaxSpeed bound the palette sampling speed.
	MinSpeed = 1
	MaxSpeed = 30
)

// sampleStride maps a speed setting to the pixel stride used when building
// the palette. Speeds below 10 sample every pixel.
func sampleStride(speed int) int {
	speed = min(max(speed, MinSpeed), MaxSpeed)
	return 1 + speed/10
}

// sampled exposes every stride-th pixel of src in each direction.
type sampled struct {
	src    image.Image
	stride int
	rect   image.Rectangle
}

func newSampled(src image.Image, stride int) image.Image {
	if stride <= 1 {
		return src
	}
	b := src.Bounds()
	w := max(1, (b.Dx()+stride-1)/stride)
	h := max(1, (b.Dy()+stride-1)/stride)
	return &sampled{src: src, stride: stride, rect: image.Rect(0, 0, w, h)}
}

func (s *sampled) ColorModel() color.Model { return s.src.ColorModel() }

func (s *sampled) Bounds() image.Rectangle { return s.rect }

func (s *sampled) At(x, y int) color.Color {
	b := s.src.Bounds()
	return s.src.At(b.Min.X+x*s.stride, b.Min.Y+y*s.stride)
}

// quantize reduces src to at most 256 colours with a median cut palette and
// Floyd-Steinberg dithering. The result always starts at the origin.
func quantize(src image.Image, speed int) *image.Paletted {
	palette := median.Quantizer(maxColors).Quantize(make(color.Palette, 0, maxColors), newSampled(src, sampleStride(speed)))
	if len(palette) == 0 {
		palette = color.Palette{color.Black}
	}
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), src, b.Min)
	return dst
}
