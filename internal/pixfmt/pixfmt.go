// Package pixfmt converts decoded RGB(A) pixel data into the packed 32-bit
// layout the viewer uploads for display, and reads it back.
package pixfmt

import (
	"image"
	"image/color"

	"golang.org/x/sys/cpu"
)

// ByteOrder selects the channel layout of a packed pixel.
type ByteOrder int

const (
	// LittleEndian packs pixels as [B,G,R,A].
	LittleEndian ByteOrder = iota
	// BigEndian packs pixels as [A,R,G,B].
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "ARGB"
	}
	return "BGRA"
}

// Offsets returns the byte offsets of the red, green, blue and alpha channels
// inside one packed pixel.
func (o ByteOrder) Offsets() (r, g, b, a int) {
	if o == BigEndian {
		return 1, 2, 3, 0
	}
	return 2, 1, 0, 3
}

// NativeOrder returns the order matching the host's 32-bit word layout.
func NativeOrder() ByteOrder {
	if cpu.IsBigEndian {
		return BigEndian
	}
	return LittleEndian
}

// Source is an intermediate RGB or RGBA (straight alpha) buffer. Rows may be
// padded, so Stride can exceed Width*Channels.
type Source struct {
	Pix      []byte
	Width    int
	Height   int
	Stride   int
	Channels int
}

// rowStride pads a row to a 4-byte boundary.
func rowStride(width, channels int) int {
	return (width*channels + 3) &^ 3
}

// NewSource allocates a zeroed source buffer.
func NewSource(width, height, channels int) *Source {
	stride := rowStride(width, channels)
	return &Source{
		Pix:      make([]byte, stride*height),
		Width:    width,
		Height:   height,
		Stride:   stride,
		Channels: channels,
	}
}

// HasAlpha reports whether the buffer carries an alpha channel.
func (s *Source) HasAlpha() bool {
	return s.Channels == 4
}

// Channels returns 4 when the colour model of img can express transparency
// and 3 otherwise.
func Channels(img image.Image) int {
	switch m := img.(type) {
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4
			}
		}
		return 3
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return 3
	case *image.NYCbCrA:
		return 4
	}
	switch img.ColorModel() {
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return 4
	}
	return 3
}

// FromImage flattens img into a source buffer with the given channel count.
func FromImage(img image.Image, channels int) *Source {
	b := img.Bounds()
	src := NewSource(b.Dx(), b.Dy(), channels)

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < src.Height; y++ {
			in := nrgba.Pix[(y+b.Min.Y-nrgba.Rect.Min.Y)*nrgba.Stride+(b.Min.X-nrgba.Rect.Min.X)*4:]
			out := src.Pix[y*src.Stride:]
			for x := 0; x < src.Width; x++ {
				copy(out[x*channels:x*channels+channels], in[x*4:x*4+channels])
			}
		}
		return src
	}

	for y := 0; y < src.Height; y++ {
		out := src.Pix[y*src.Stride:]
		for x := 0; x < src.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := x * channels
			out[i], out[i+1], out[i+2] = c.R, c.G, c.B
			if channels == 4 {
				out[i+3] = c.A
			}
		}
	}
	return src
}
