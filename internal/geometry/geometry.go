// Package geometry holds the zoom, fit and placement arithmetic for the
// displayed image.
package geometry

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"
)

// ErrZoomFloor is returned by ZoomOut when the image may not shrink further.
var ErrZoomFloor = errors.New("cannot zoom out anymore")

const (
	// MinZoomStep is the smallest zoom step reachable by zooming out.
	MinZoomStep = -9
	// zoomFloorPx bounds how small zooming out may make a window.
	zoomFloorPx = 64
	// ErrorWidth and ErrorHeight size the placeholder shown for undecodable files.
	ErrorWidth  = 400
	ErrorHeight = 300
)

// Rect is a monitor area in screen coordinates.
type Rect struct {
	X, Y, W, H int
}

// State is the size and placement of the current image.
type State struct {
	OrigW, OrigH int
	WinW, WinH   int
	WinX, WinY   int
	ZoomStep     int
}

// Engine applies the display modes to a State. The zero value is unusable;
// set Monitor before loading an image.
type Engine struct {
	State
	Monitor Rect

	Fullscreen bool
	Center     bool
	Maxpect    bool
	ScaleDown  bool
	// FixedWidth forces the window width on reset when non-zero.
	FixedWidth int
	// FixedZoom is the zoom step restored on every load.
	FixedZoom int
}

// NewEngine returns an engine for the given monitor.
func NewEngine(mon Rect) *Engine {
	return &Engine{Monitor: mon, Center: true}
}

func minOf[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// roundHalfUp rounds to the nearest integer, ties upward.
func roundHalfUp[F constraints.Float](x F) int {
	return int(math.Floor(float64(x) + 0.5))
}

// scaleByStep sizes one dimension for a zoom step: v * (10+step) / 10.
func scaleByStep[T constraints.Signed](v, step T) T {
	return v * (10 + step) / 10
}

// clampAxis keeps one axis of the window placed against a screen span. A
// window smaller than the screen stays inside it; a larger one never leaves
// a gap at either edge.
func clampAxis[T constraints.Signed](pos, size, span T) T {
	if size < span {
		if pos < 0 {
			pos = 0
		}
		if pos+size > span {
			pos = span - size
		}
	} else {
		if pos > 0 {
			pos = 0
		}
		if pos+size < span {
			pos = span - size
		}
	}
	return pos
}

// SetImage records the natural size of a freshly loaded image.
func (e *Engine) SetImage(w, h int) {
	e.OrigW, e.OrigH = w, h
	e.ZoomStep = e.FixedZoom
}

// SetError switches to the placeholder size used for decode failures.
func (e *Engine) SetError() {
	e.SetImage(ErrorWidth, ErrorHeight)
}

// ZoomPercent is the displayed size relative to the natural size.
func (e *Engine) ZoomPercent() int {
	if e.OrigW == 0 {
		return 100
	}
	return roundHalfUp((1.0 - float64(e.OrigW-e.WinW)/float64(e.OrigW)) * 100)
}

// syncZoomStep re-derives the zoom step from the displayed size when a
// fitting mode picked that size, then leaves the fitting modes.
func (e *Engine) syncZoomStep() {
	if e.Maxpect || e.ScaleDown || e.FixedWidth != 0 {
		e.ZoomStep = (e.ZoomPercent() - 100) / 10
	}
	e.Maxpect = false
	e.ScaleDown = false
}

func (e *Engine) applyZoom() {
	oldW, oldH := e.WinW, e.WinH
	e.WinW = scaleByStep(e.OrigW, e.ZoomStep)
	e.WinH = scaleByStep(e.OrigH, e.ZoomStep)

	e.WinX -= (e.WinW - oldW) / 2
	e.WinY -= (e.WinH - oldH) / 2

	if e.Fullscreen && e.Center {
		e.CenterImage()
	} else {
		e.CorrectPosition()
	}
}

// ZoomIn grows the image by one step around its visual centre.
func (e *Engine) ZoomIn() {
	e.syncZoomStep()
	e.ZoomStep++
	e.applyZoom()
}

// ZoomOut shrinks the image by one step, or returns ErrZoomFloor and leaves
// the size alone once the floor is reached.
func (e *Engine) ZoomOut() error {
	e.syncZoomStep()
	if e.ZoomStep <= MinZoomStep ||
		e.WinW <= minOf(zoomFloorPx, e.OrigW) ||
		e.WinH <= minOf(zoomFloorPx, e.OrigH) {
		return ErrZoomFloor
	}
	e.ZoomStep--
	e.applyZoom()
	return nil
}

// ZoomMaxpect fits the image to the monitor keeping its aspect ratio.
func (e *Engine) ZoomMaxpect() {
	if e.OrigW == 0 || e.OrigH == 0 {
		return
	}
	zx := float64(e.Monitor.W) / float64(e.OrigW)
	zy := float64(e.Monitor.H) / float64(e.OrigH)
	scale := minOf(zx, zy)
	e.WinW = int(float64(e.OrigW) * scale)
	e.WinH = int(float64(e.OrigH) * scale)
	e.CenterImage()
}

func (e *Engine) oversize() bool {
	return e.OrigW > e.Monitor.W || e.OrigH > e.Monitor.H
}

// CheckSize re-applies the fitting modes. reset restores the zoomed size
// from the natural size.
func (e *Engine) CheckSize(reset bool) {
	if e.Maxpect || (e.ScaleDown && e.oversize()) {
		e.ZoomMaxpect()
	} else if reset || (e.ScaleDown && (e.WinW < e.OrigW || e.WinH < e.OrigH)) {
		e.ResetCoords()
	}

	switch {
	case e.Center:
		e.CenterImage()
	case e.Fullscreen:
		if e.WinX > e.Monitor.X {
			e.WinX -= e.Monitor.X
		}
		if e.WinY > e.Monitor.Y {
			e.WinY -= e.Monitor.Y
		}
	default:
		if e.WinX < e.Monitor.X {
			e.WinX += e.Monitor.X
		}
		if e.WinY < e.Monitor.Y {
			e.WinY += e.Monitor.Y
		}
	}
}

// ResetCoords sizes the window from the natural size and the zoom step, or
// from the fixed width when one is set.
func (e *Engine) ResetCoords() {
	if e.FixedWidth != 0 && e.OrigW != 0 {
		ratio := float64(e.FixedWidth) / float64(e.OrigW)
		e.WinW = e.FixedWidth
		e.WinH = int(float64(e.OrigH) * ratio)
		return
	}
	e.WinW = scaleByStep(e.OrigW, e.ZoomStep)
	e.WinH = scaleByStep(e.OrigH, e.ZoomStep)
}

// ResetZoom returns to the configured zoom step and natural fitting.
func (e *Engine) ResetZoom() {
	e.ZoomStep = e.FixedZoom
	e.CheckSize(true)
}

// CenterImage places the window in the middle of the monitor.
func (e *Engine) CenterImage() {
	e.WinX = (e.Monitor.W - e.WinW) / 2
	e.WinY = (e.Monitor.H - e.WinH) / 2
	if !e.Fullscreen {
		e.WinX += e.Monitor.X
		e.WinY += e.Monitor.Y
	}
}

// CorrectPosition clamps the window position to the screen.
func (e *Engine) CorrectPosition() {
	e.WinX = clampAxis(e.WinX, e.WinW, e.Monitor.W)
	e.WinY = clampAxis(e.WinY, e.WinH, e.Monitor.H)
}

// Move pans the window by (dx, dy) and clamps it.
func (e *Engine) Move(dx, dy int) {
	e.WinX += dx
	e.WinY += dy
	e.CorrectPosition()
}

// ResolveRotation turns a rotation setting into quarter turns for the loaded
// image. Settings above 10 rotate by setting-10 only when the image is wide
// on a tall monitor (or the reverse) and does not fit.
func (e *Engine) ResolveRotation(setting int) int {
	if setting <= 10 {
		return setting
	}
	screenWide := e.Monitor.W > e.Monitor.H
	imageWide := e.OrigW > e.OrigH
	if screenWide != imageWide && e.oversize() {
		return setting - 10
	}
	return 0
}

// Rotate accounts for the image having been turned by the given number of
// quarter turns. Half turns leave the dimensions alone.
func (e *Engine) Rotate(turns int) {
	if ((turns%4)+4)%2 == 0 {
		return
	}
	e.OrigW, e.OrigH = e.OrigH, e.OrigW
	e.WinW, e.WinH = e.WinH, e.WinW
	e.CorrectPosition()
}
