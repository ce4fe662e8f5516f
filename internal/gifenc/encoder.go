package gifenc

import (
	"bufio"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"os"

	"clipgif/internal/services"
)

const maxDimension = 65535

// DefaultSpeed is the palette sampling speed used when none is configured.
const DefaultSpeed = 10

// Options configures an Encoder.
type Options struct {
	// Delay is the per-frame display time in hundredths of a second.
	Delay int
	// Speed trades palette quality for speed, MinSpeed to MaxSpeed.
	Speed int
	// ValidateDimensions rejects frames whose size differs from the canvas.
	// When false such frames are cropped or padded onto the canvas.
	ValidateDimensions bool
}

// DelayForFPS converts a sampling rate into a GIF frame delay.
func DelayForFPS(fps int) int {
	if fps <= 0 {
		return 1
	}
	return max(1, int(math.Round(100/float64(fps))))
}

// Encoder appends frames to an animated GIF as they arrive.
type Encoder struct {
	w      *bufio.Writer
	closer io.Closer
	width  int
	height int
	opts   Options
	frames int
	closed bool
}

// New writes the GIF header and an infinite loop extension to w and returns
// an encoder bound to the given canvas size.
func New(w io.Writer, width, height int, opts Options) (*Encoder, error) {
	if width <= 0 || height <= 0 || width > maxDimension || height > maxDimension {
		return nil, services.Wrap(services.ErrEncoderInit, "encode", "create encoder",
			fmt.Sprintf("invalid canvas %dx%d", width, height), nil)
	}
	if opts.Delay <= 0 {
		opts.Delay = 1
	}
	if opts.Speed == 0 {
		opts.Speed = DefaultSpeed
	}
	e := &Encoder{
		w:      bufio.NewWriter(w),
		width:  width,
		height: height,
		opts:   opts,
	}
	writeHeader(e.w, width, height)
	writeLoop(e.w, 0)
	if err := e.w.Flush(); err != nil {
		return nil, services.Wrap(services.ErrWrite, "encode", "write header", "", err)
	}
	return e, nil
}

// Create opens path for writing and starts an encoder on it. The file is
// closed by Close.
func Create(path string, width, height int, opts Options) (*Encoder, error) {
	if width <= 0 || height <= 0 || width > maxDimension || height > maxDimension {
		return nil, services.Wrap(services.ErrEncoderInit, "encode", "create encoder",
			fmt.Sprintf("invalid canvas %dx%d", width, height), nil)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, services.Wrap(services.ErrWrite, "encode", "create output", path, err)
	}
	e, err := New(f, width, height, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	e.closer = f
	return e, nil
}

// Width returns the canvas width.
func (e *Encoder) Width() int { return e.width }

// Height returns the canvas height.
func (e *Encoder) Height() int { return e.height }

// Frames returns how many frames have been written.
func (e *Encoder) Frames() int { return e.frames }

// WriteFrame quantizes img and appends it to the stream.
func (e *Encoder) WriteFrame(img image.Image) error {
	if e.closed {
		return services.Wrap(services.ErrWrite, "encode", "write frame", "encoder closed", nil)
	}
	b := img.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		if e.opts.ValidateDimensions {
			return services.Wrap(services.ErrImageDecode, "encode", "write frame",
				fmt.Sprintf("frame %d is %dx%d, expected %dx%d", e.frames+1, b.Dx(), b.Dy(), e.width, e.height), nil)
		}
		img = fitCanvas(img, e.width, e.height)
	}

	paletted := quantize(img, e.opts.Speed)
	writeGraphicControl(e.w, e.opts.Delay)
	if err := writeImage(e.w, paletted); err != nil {
		return services.Wrap(services.ErrWrite, "encode", "write frame", fmt.Sprintf("frame %d", e.frames+1), err)
	}
	if err := e.w.Flush(); err != nil {
		return services.Wrap(services.ErrWrite, "encode", "write frame", fmt.Sprintf("frame %d", e.frames+1), err)
	}
	e.frames++
	return nil
}

// Close writes the trailer and closes the underlying file when the encoder
// owns it. Calling Close more than once is a no-op.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	_ = e.w.WriteByte(sTrailer)
	err := e.w.Flush()
	if e.closer != nil {
		if cerr := e.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return services.Wrap(services.ErrWrite, "encode", "finish output", "", err)
	}
	return nil
}

// fitCanvas draws img at the origin of a width x height canvas, cropping or
// padding with black as needed.
func fitCanvas(img image.Image, width, height int) image.Image {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)
	return canvas
}
