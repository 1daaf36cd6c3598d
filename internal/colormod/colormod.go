// Package colormod holds the brightness, contrast and gamma settings
// applied when an image is drawn.
package colormod

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	// Neutral is the raw value that leaves an image unchanged.
	Neutral = 256
	// Step is the raw change of one user adjustment.
	Step = 8
	// Max is the largest raw value.
	Max = 2 * Neutral
)

// Channel names one of the three settings.
type Channel int

const (
	Brightness Channel = iota
	Contrast
	Gamma
)

// Modifier is a brightness/contrast/gamma triple in raw units.
type Modifier struct {
	Brightness int
	Contrast   int
	Gamma      int
}

// Default returns the neutral modifier.
func Default() Modifier {
	return Modifier{Brightness: Neutral, Contrast: Neutral, Gamma: Neutral}
}

// FromOffsets builds a modifier from user offsets in the range -32..32.
func FromOffsets(b, c, g int) Modifier {
	m := Modifier{
		Brightness: Neutral + b*Step,
		Contrast:   Neutral + c*Step,
		Gamma:      Neutral + g*Step,
	}
	m.clamp()
	return m
}

// Offsets returns the user-facing offsets, raw/8 - 32.
func (m Modifier) Offsets() (b, c, g int) {
	return m.Brightness/Step - 32, m.Contrast/Step - 32, m.Gamma/Step - 32
}

// IsNeutral reports whether drawing with m changes nothing.
func (m Modifier) IsNeutral() bool {
	return m == Default()
}

// Adjust moves one setting by steps adjustments.
func (m *Modifier) Adjust(ch Channel, steps int) {
	switch ch {
	case Brightness:
		m.Brightness += steps * Step
	case Contrast:
		m.Contrast += steps * Step
	case Gamma:
		m.Gamma += steps * Step
	}
	m.clamp()
}

func clampRaw(v, lo int) int {
	if v < lo {
		return lo
	}
	if v > Max {
		return Max
	}
	return v
}

// gamma must stay positive
func (m *Modifier) clamp() {
	m.Brightness = clampRaw(m.Brightness, 0)
	m.Contrast = clampRaw(m.Contrast, 0)
	m.Gamma = clampRaw(m.Gamma, Step)
}

// Apply returns img with the modifier applied; a neutral modifier returns
// img itself.
func (m Modifier) Apply(img image.Image) image.Image {
	if m.IsNeutral() {
		return img
	}
	out := img
	if m.Gamma != Neutral {
		out = imaging.AdjustGamma(out, float64(m.Gamma)/Neutral)
	}
	if m.Brightness != Neutral {
		out = imaging.AdjustBrightness(out, percent(m.Brightness))
	}
	if m.Contrast != Neutral {
		out = imaging.AdjustContrast(out, percent(m.Contrast))
	}
	return out
}

// percent maps a raw value onto imaging's -100..100 adjustment range.
func percent(raw int) float64 {
	return float64(raw-Neutral) * 100 / Neutral
}
