// Package icc reads embedded ICC colour profiles and converts pixels from
// an image's profile to the display profile. Only RGB matrix/TRC profiles
// are understood; anything else is reported so the caller can fall back to
// uncorrected colours.
package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf16"
)

var (
	// ErrCorrupt reports a profile or container that could not be parsed.
	ErrCorrupt = errors.New("corrupt ICC profile")
	// ErrUnsupported reports a valid profile this package cannot apply.
	ErrUnsupported = errors.New("unsupported ICC profile")
)

const headerSize = 128

// Curve is a tone reproduction curve mapping encoded values in [0,1] to
// linear light.
type Curve interface {
	Eval(x float64) float64
}

type identityCurve struct{}

func (identityCurve) Eval(x float64) float64 { return x }

type gammaCurve float64

func (g gammaCurve) Eval(x float64) float64 { return math.Pow(x, float64(g)) }

// tableCurve is a sampled curve with values normalised to [0,1].
type tableCurve []float64

func (t tableCurve) Eval(x float64) float64 {
	pos := x * float64(len(t)-1)
	i := int(pos)
	if i >= len(t)-1 {
		return t[len(t)-1]
	}
	frac := pos - float64(i)
	return t[i] + (t[i+1]-t[i])*frac
}

// paramCurve is an ICC parametric curve of function type 0..4.
type paramCurve struct {
	fn                  int
	g, a, b, c, d, e, f float64
}

func (p paramCurve) Eval(x float64) float64 {
	switch p.fn {
	case 0:
		return math.Pow(x, p.g)
	case 1:
		if x >= -p.b/p.a {
			return math.Pow(p.a*x+p.b, p.g)
		}
		return 0
	case 2:
		if x >= -p.b/p.a {
			return math.Pow(p.a*x+p.b, p.g) + p.c
		}
		return p.c
	case 3:
		if x >= p.d {
			return math.Pow(p.a*x+p.b, p.g)
		}
		return p.c * x
	default:
		if x >= p.d {
			return math.Pow(p.a*x+p.b, p.g) + p.e
		}
		return p.c*x + p.f
	}
}

var paramCounts = map[int]int{0: 1, 1: 3, 2: 4, 3: 5, 4: 7}

// Profile is a parsed RGB matrix/TRC profile.
type Profile struct {
	Description string
	Class       string

	// matrix maps linear RGB to PCS XYZ; columns are the red, green and
	// blue colorants.
	matrix [3][3]float64
	trc    [3]Curve
}

// SRGB returns the built-in sRGB profile, used when an image carries no
// profile and as the default display profile.
func SRGB() *Profile {
	trc := paramCurve{fn: 3, g: 2.4, a: 1 / 1.055, b: 0.055 / 1.055, c: 1 / 12.92, d: 0.04045}
	return &Profile{
		Description: "sRGB built-in",
		Class:       "mntr",
		matrix: [3][3]float64{
			{0.4361, 0.3851, 0.1431},
			{0.2225, 0.7169, 0.0606},
			{0.0139, 0.0971, 0.7141},
		},
		trc: [3]Curve{trc, trc, trc},
	}
}

func be32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

func s15Fixed16(b []byte) float64 {
	return float64(int32(be32(b))) / 65536
}

// Parse decodes an ICC profile.
func Parse(data []byte) (*Profile, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	if string(data[36:40]) != "acsp" {
		return nil, fmt.Errorf("%w: missing acsp signature", ErrCorrupt)
	}
	if cs := string(data[16:20]); cs != "RGB " {
		return nil, fmt.Errorf("%w: colour space %q", ErrUnsupported, strings.TrimSpace(cs))
	}
	if pcs := string(data[20:24]); pcs != "XYZ " {
		return nil, fmt.Errorf("%w: connection space %q", ErrUnsupported, strings.TrimSpace(pcs))
	}

	count := int(be32(data[headerSize:]))
	if count < 0 || headerSize+4+12*count > len(data) {
		return nil, fmt.Errorf("%w: tag table", ErrCorrupt)
	}
	tags := make(map[string][]byte, count)
	for i := 0; i < count; i++ {
		ent := data[headerSize+4+12*i:]
		off, size := int(be32(ent[4:])), int(be32(ent[8:]))
		if off < 0 || size < 0 || off+size > len(data) {
			return nil, fmt.Errorf("%w: tag %q out of bounds", ErrCorrupt, ent[:4])
		}
		tags[string(ent[:4])] = data[off : off+size]
	}

	p := &Profile{Class: strings.TrimSpace(string(data[12:16]))}
	for i, sig := range [3]string{"rXYZ", "gXYZ", "bXYZ"} {
		xyz, err := parseXYZ(tags[sig])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sig, err)
		}
		for row := 0; row < 3; row++ {
			p.matrix[row][i] = xyz[row]
		}
	}
	for i, sig := range [3]string{"rTRC", "gTRC", "bTRC"} {
		c, err := parseCurve(tags[sig])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sig, err)
		}
		p.trc[i] = c
	}
	if d, ok := tags["desc"]; ok {
		p.Description = parseDesc(d)
	}
	return p, nil
}

func parseXYZ(b []byte) ([3]float64, error) {
	var xyz [3]float64
	if b == nil {
		return xyz, fmt.Errorf("%w: not a matrix/TRC profile", ErrUnsupported)
	}
	if len(b) < 20 || string(b[:4]) != "XYZ " {
		return xyz, fmt.Errorf("%w: bad XYZ tag", ErrCorrupt)
	}
	for i := range xyz {
		xyz[i] = s15Fixed16(b[8+4*i:])
	}
	return xyz, nil
}

func parseCurve(b []byte) (Curve, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: not a matrix/TRC profile", ErrUnsupported)
	}
	if len(b) < 12 {
		return nil, fmt.Errorf("%w: short curve", ErrCorrupt)
	}

	switch string(b[:4]) {
	case "curv":
		n := int(be32(b[8:]))
		if n < 0 || len(b) < 12+2*n {
			return nil, fmt.Errorf("%w: curve table", ErrCorrupt)
		}
		switch n {
		case 0:
			return identityCurve{}, nil
		case 1:
			return gammaCurve(float64(binary.BigEndian.Uint16(b[12:])) / 256), nil
		}
		t := make(tableCurve, n)
		for i := range t {
			t[i] = float64(binary.BigEndian.Uint16(b[12+2*i:])) / 65535
		}
		return t, nil

	case "para":
		fn := int(binary.BigEndian.Uint16(b[8:]))
		n, ok := paramCounts[fn]
		if !ok {
			return nil, fmt.Errorf("%w: parametric function %d", ErrUnsupported, fn)
		}
		if len(b) < 12+4*n {
			return nil, fmt.Errorf("%w: parametric curve", ErrCorrupt)
		}
		var v [7]float64
		for i := 0; i < n; i++ {
			v[i] = s15Fixed16(b[12+4*i:])
		}
		p := paramCurve{fn: fn, g: v[0], a: v[1], b: v[2], c: v[3], d: v[4], e: v[5], f: v[6]}
		if p.g <= 0 {
			return nil, fmt.Errorf("%w: parametric curve with gamma %v", ErrCorrupt, p.g)
		}
		if (fn == 1 || fn == 2) && p.a == 0 {
			return nil, fmt.Errorf("%w: parametric curve with a=0", ErrCorrupt)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: curve type %q", ErrUnsupported, b[:4])
}

func parseDesc(b []byte) string {
	if len(b) < 12 {
		return ""
	}
	switch string(b[:4]) {
	case "desc":
		n := int(be32(b[8:]))
		if n < 0 || 12+n > len(b) {
			return ""
		}
		return strings.TrimRight(string(b[12:12+n]), "\x00")
	case "mluc":
		if len(b) < 28 || be32(b[8:]) == 0 {
			return ""
		}
		n, off := int(be32(b[20:])), int(be32(b[24:]))
		if n < 0 || off < 0 || off+n > len(b) {
			return ""
		}
		units := make([]uint16, n/2)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(b[off+2*i:])
		}
		return strings.TrimRight(string(utf16.Decode(units)), "\x00")
	}
	return ""
}
