// Package decode turns image files into packed pixel buffers ready for
// display: upright, composited over the transparency checkerboard, in the
// host byte order and optionally colour managed.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	// registered formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"qiv/internal/icc"
	"qiv/internal/pixfmt"
)

// ErrNoImage reports a file that could not be decoded as an image.
var ErrNoImage = errors.New("no image")

// Options controls the decoding pipeline.
type Options struct {
	AutoRotate  bool
	ColorManage bool
	// DisplayProfile is the target of colour management; nil means sRGB.
	DisplayProfile *icc.Profile
	Order          pixfmt.ByteOrder
}

// DefaultOptions rotates by EXIF and packs in the host order.
func DefaultOptions() Options {
	return Options{AutoRotate: true, Order: pixfmt.NativeOrder()}
}

// Image is a decoded image.
type Image struct {
	Pixels      *pixfmt.Native
	Format      string
	Orientation Orientation
	// ProfileWarning is set when colour management was requested but failed;
	// the pixels are then uncorrected.
	ProfileWarning error
}

// Width returns the displayed width.
func (im *Image) Width() int { return im.Pixels.Width }

// Height returns the displayed height.
func (im *Image) Height() int { return im.Pixels.Height }

// HasAlpha reports whether the source had transparency.
func (im *Image) HasAlpha() bool { return im.Pixels.HasAlpha }

// Decoder decodes images with fixed options.
type Decoder struct {
	opts    Options
	display *icc.Profile
}

// New returns a decoder.
func New(opts Options) *Decoder {
	d := &Decoder{opts: opts, display: opts.DisplayProfile}
	if d.display == nil {
		d.display = icc.SRGB()
	}
	return d
}

// DecodeFile reads and decodes path.
func (d *Decoder) DecodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoImage, err)
	}
	return d.Decode(data, path)
}

// Decode decodes an in-memory file; name is used in errors only.
func (d *Decoder) Decode(data []byte, name string) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrNoImage, name, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %s has no pixels", ErrNoImage, name)
	}

	out := &Image{Format: format}
	channels := pixfmt.Channels(img)
	if d.opts.AutoRotate {
		out.Orientation = ReadOrientation(data)
		img = out.Orientation.Apply(img)
	}

	src := pixfmt.FromImage(img, channels)
	out.Pixels = pixfmt.Convert(src, d.opts.Order)

	if d.opts.ColorManage {
		if err := d.manageColor(data, out.Pixels); err != nil {
			out.ProfileWarning = fmt.Errorf("colour profile of %s: %w", name, err)
		}
	}
	return out, nil
}

// manageColor converts pixels from the embedded profile, or sRGB when
// there is none, into the display profile.
func (d *Decoder) manageColor(data []byte, pixels *pixfmt.Native) error {
	embedded, err := icc.Extract(data)
	if err != nil {
		return err
	}
	if embedded == nil && d.opts.DisplayProfile == nil {
		return nil
	}

	src := icc.SRGB()
	if embedded != nil {
		if src, err = icc.Parse(embedded); err != nil {
			return err
		}
	}
	tr, err := icc.NewTransform(src, d.display)
	if err != nil {
		return err
	}
	tr.Apply(pixels)
	return nil
}
