package pixfmt

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Checkerboard used as the backdrop for transparent images.
const CheckSize = 8

var checkerShades = [2]uint32{0x66, 0xaa}

// Native is a packed 4-bytes-per-pixel buffer laid out in Order, without row
// padding. When HasAlpha is false the alpha byte is a zero pad.
type Native struct {
	Pix      []byte
	Width    int
	Height   int
	HasAlpha bool
	Order    ByteOrder
}

// CompositeChecker blends every pixel of s over the checkerboard and returns
// an opaque copy. Sources without alpha are returned unchanged.
func CompositeChecker(s *Source) *Source {
	if !s.HasAlpha() {
		return s
	}
	dst := NewSource(s.Width, s.Height, 4)
	for y := 0; y < s.Height; y++ {
		in := s.Pix[y*s.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < s.Width; x++ {
			i := x * 4
			a := uint32(in[i+3])
			shade := checkerShades[((x/CheckSize)+(y/CheckSize))&1]
			for c := 0; c < 3; c++ {
				out[i+c] = byte((uint32(in[i+c])*a + shade*(255-a) + 127) / 255)
			}
			out[i+3] = 0xff
		}
	}
	return dst
}

// Pack re-lays out src into order without altering any value.
func Pack(src *Source, order ByteOrder) *Native {
	return pack(src, src, order)
}

// Convert composites transparent sources over the checkerboard and packs the
// result into order, keeping the original alpha values.
func Convert(src *Source, order ByteOrder) *Native {
	return pack(CompositeChecker(src), src, order)
}

func pack(colors, alpha *Source, order ByteOrder) *Native {
	n := &Native{
		Pix:      make([]byte, 4*colors.Width*colors.Height),
		Width:    colors.Width,
		Height:   colors.Height,
		HasAlpha: alpha.HasAlpha(),
		Order:    order,
	}
	ro, gO, bo, ao := order.Offsets()

	k := 0
	for y := 0; y < n.Height; y++ {
		row := colors.Pix[y*colors.Stride:]
		arow := alpha.Pix[y*alpha.Stride:]
		for x := 0; x < n.Width; x++ {
			i := x * colors.Channels
			px := n.Pix[k : k+4 : k+4]
			px[ro], px[gO], px[bo] = row[i], row[i+1], row[i+2]
			if n.HasAlpha {
				px[ao] = arow[x*4+3]
			} else {
				px[ao] = 0
			}
			k += 4
		}
	}
	return n
}

func (n *Native) ColorModel() color.Model { return color.NRGBAModel }

func (n *Native) Bounds() image.Rectangle { return image.Rect(0, 0, n.Width, n.Height) }

func (n *Native) At(x, y int) color.Color { return n.NRGBAAt(x, y) }

// NRGBAAt reads one pixel under the buffer's declared order. Pixels without
// alpha report as opaque.
func (n *Native) NRGBAAt(x, y int) color.NRGBA {
	if !(image.Point{x, y}.In(n.Bounds())) {
		return color.NRGBA{}
	}
	ro, gO, bo, ao := n.Order.Offsets()
	i := (y*n.Width + x) * 4
	px := n.Pix[i : i+4 : i+4]
	c := color.NRGBA{R: px[ro], G: px[gO], B: px[bo], A: 0xff}
	if n.HasAlpha {
		c.A = px[ao]
	}
	return c
}

// ToNRGBA unpacks the buffer. With keepAlpha false every pixel is opaque,
// which shows the checkerboard preview instead of the shape.
func (n *Native) ToNRGBA(keepAlpha bool) *image.NRGBA {
	dst := image.NewNRGBA(n.Bounds())
	ro, gO, bo, ao := n.Order.Offsets()
	for i := 0; i < len(n.Pix); i += 4 {
		px := n.Pix[i : i+4 : i+4]
		out := dst.Pix[i : i+4 : i+4]
		out[0], out[1], out[2], out[3] = px[ro], px[gO], px[bo], 0xff
		if keepAlpha && n.HasAlpha {
			out[3] = px[ao]
		}
	}
	return dst
}

// Rotate returns a copy turned clockwise by the given number of quarter
// turns. Odd turns swap width and height.
func (n *Native) Rotate(turns int) *Native {
	switch ((turns % 4) + 4) % 4 {
	case 1:
		return n.repack(imaging.Rotate270(n.ToNRGBA(true)))
	case 2:
		return n.repack(imaging.Rotate180(n.ToNRGBA(true)))
	case 3:
		return n.repack(imaging.Rotate90(n.ToNRGBA(true)))
	}
	return n
}

// Flip returns a mirrored copy; horizontal swaps columns, otherwise rows.
func (n *Native) Flip(horizontal bool) *Native {
	if horizontal {
		return n.repack(imaging.FlipH(n.ToNRGBA(true)))
	}
	return n.repack(imaging.FlipV(n.ToNRGBA(true)))
}

// repack lays img out again in n's order and alpha mode. Colours are taken
// as-is, so an already composited buffer is not blended twice.
func (n *Native) repack(img *image.NRGBA) *Native {
	channels := 3
	if n.HasAlpha {
		channels = 4
	}
	return Pack(FromImage(img, channels), n.Order)
}
