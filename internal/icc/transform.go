package icc

import (
	"fmt"
	"math"

	"qiv/internal/pixfmt"
)

// outputSteps is the resolution of the linear-to-encoded lookup tables.
const outputSteps = 4096

// Transform converts pixels encoded for one profile into another.
type Transform struct {
	in  [3][256]float64
	m   [3][3]float64
	out [3][outputSteps]uint8
}

// NewTransform builds the lookup tables for src to dst.
func NewTransform(src, dst *Profile) (*Transform, error) {
	inv, ok := invert3(dst.matrix)
	if !ok {
		return nil, fmt.Errorf("%w: singular colorant matrix", ErrUnsupported)
	}
	t := &Transform{m: mul3(inv, src.matrix)}
	for _, row := range t.m {
		for _, v := range row {
			if !finite(v) {
				return nil, fmt.Errorf("%w: colorant matrix", ErrCorrupt)
			}
		}
	}

	for c := 0; c < 3; c++ {
		for v := 0; v < 256; v++ {
			t.in[c][v] = src.trc[c].Eval(float64(v) / 255)
			if !finite(t.in[c][v]) {
				return nil, fmt.Errorf("%w: tone curve undefined at %d/255", ErrCorrupt, v)
			}
		}
		for i := 0; i < outputSteps; i++ {
			x := invertCurve(dst.trc[c], float64(i)/(outputSteps-1))
			t.out[c][i] = uint8(math.Floor(x*255 + 0.5))
		}
	}
	return t, nil
}

// Apply converts the colour channels of n in place; alpha is left alone.
func (t *Transform) Apply(n *pixfmt.Native) {
	ro, gO, bo, _ := n.Order.Offsets()
	offs := [3]int{ro, gO, bo}

	for i := 0; i+4 <= len(n.Pix); i += 4 {
		px := n.Pix[i : i+4 : i+4]
		lin := [3]float64{t.in[0][px[ro]], t.in[1][px[gO]], t.in[2][px[bo]]}
		for c := 0; c < 3; c++ {
			v := t.m[c][0]*lin[0] + t.m[c][1]*lin[1] + t.m[c][2]*lin[2]
			switch {
			case !(v > 0): // NaN included
				v = 0
			case v > 1:
				v = 1
			}
			px[offs[c]] = t.out[c][int(v*(outputSteps-1)+0.5)]
		}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// invertCurve finds x with c(x) = y by bisection; curves are non-decreasing.
func invertCurve(c Curve, y float64) float64 {
	lo, hi := 0.0, 1.0
	for i := 0; i < 32; i++ {
		mid := (lo + hi) / 2
		if c.Eval(mid) < y {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func mul3(a, b [3][3]float64) [3][3]float64 {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return r
}

func invert3(m [3][3]float64) ([3][3]float64, bool) {
	var r [3][3]float64
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if math.Abs(det) < 1e-12 {
		return r, false
	}
	r[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) / det
	r[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) / det
	r[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) / det
	r[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) / det
	r[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) / det
	r[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) / det
	r[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) / det
	r[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) / det
	r[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) / det
	return r, true
}
