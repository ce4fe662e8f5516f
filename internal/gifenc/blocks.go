package gifenc

import (
	"bufio"
	"compress/lzw"
	"encoding/binary"
	"image"
	"image/color"
)

const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B

	extApplication  = 0xFF
	extGraphicCtrl  = 0xF9
	maxSubBlockSize = 255
)

func writeUint16(w *bufio.Writer, v int) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	_, _ = w.Write(b[:])
}

// writeHeader writes the signature and a logical screen descriptor without a
// global color table.
func writeHeader(w *bufio.Writer, width, height int) {
	_, _ = w.WriteString("GIF89a")
	writeUint16(w, width)
	writeUint16(w, height)
	_ = w.WriteByte(0x70) // 8-bit colour resolution, no global table
	_ = w.WriteByte(0x00) // background index
	_ = w.WriteByte(0x00) // aspect ratio
}

// writeLoop writes the NETSCAPE2.0 application extension. A count of zero
// loops forever.
func writeLoop(w *bufio.Writer, count int) {
	_ = w.WriteByte(sExtension)
	_ = w.WriteByte(extApplication)
	_ = w.WriteByte(0x0B)
	_, _ = w.WriteString("NETSCAPE2.0")
	_ = w.WriteByte(0x03)
	_ = w.WriteByte(0x01)
	writeUint16(w, count)
	_ = w.WriteByte(0x00)
}

func writeGraphicControl(w *bufio.Writer, delay int) {
	_ = w.WriteByte(sExtension)
	_ = w.WriteByte(extGraphicCtrl)
	_ = w.WriteByte(0x04)
	_ = w.WriteByte(0x00) // no disposal, no transparency
	writeUint16(w, delay)
	_ = w.WriteByte(0x00)
	_ = w.WriteByte(0x00)
}

// paletteBits returns the smallest table exponent holding n colours.
func paletteBits(n int) int {
	bits := 1
	for 1<<bits < n {
		bits++
	}
	return bits
}

// writeImage writes the image descriptor, the local colour table padded to a
// power of two, and the LZW-compressed pixel indices.
func writeImage(w *bufio.Writer, m *image.Paletted) error {
	b := m.Bounds()
	bits := paletteBits(len(m.Palette))

	_ = w.WriteByte(sImageDescriptor)
	writeUint16(w, 0)
	writeUint16(w, 0)
	writeUint16(w, b.Dx())
	writeUint16(w, b.Dy())
	_ = w.WriteByte(0x80 | byte(bits-1))

	writeColorTable(w, m.Palette, 1<<bits)

	litWidth := max(2, bits)
	_ = w.WriteByte(byte(litWidth))

	bw := &blockWriter{w: w}
	lw := lzw.NewWriter(bw, lzw.LSB, litWidth)
	if m.Stride == b.Dx() {
		if _, err := lw.Write(m.Pix[:b.Dx()*b.Dy()]); err != nil {
			return err
		}
	} else {
		for y := 0; y < b.Dy(); y++ {
			row := m.Pix[y*m.Stride : y*m.Stride+b.Dx()]
			if _, err := lw.Write(row); err != nil {
				return err
			}
		}
	}
	if err := lw.Close(); err != nil {
		return err
	}
	bw.close()
	return bw.err
}

func writeColorTable(w *bufio.Writer, p color.Palette, size int) {
	var rgb [3]byte
	for i := 0; i < size; i++ {
		rgb = [3]byte{}
		if i < len(p) {
			c := color.NRGBAModel.Convert(p[i]).(color.NRGBA)
			rgb = [3]byte{c.R, c.G, c.B}
		}
		_, _ = w.Write(rgb[:])
	}
}

// blockWriter splits LZW output into length-prefixed data sub-blocks.
type blockWriter struct {
	w   *bufio.Writer
	buf [maxSubBlockSize]byte
	n   int
	err error
}

func (b *blockWriter) Write(p []byte) (int, error) {
	for _, c := range p {
		b.buf[b.n] = c
		b.n++
		if b.n == maxSubBlockSize {
			b.flush()
		}
	}
	return len(p), b.err
}

func (b *blockWriter) flush() {
	if b.n == 0 || b.err != nil {
		return
	}
	if err := b.w.WriteByte(byte(b.n)); err != nil {
		b.err = err
		return
	}
	if _, err := b.w.Write(b.buf[:b.n]); err != nil {
		b.err = err
		return
	}
	b.n = 0
}

func (b *blockWriter) close() {
	b.flush()
	if b.err == nil {
		b.err = b.w.WriteByte(0x00)
	}
}
