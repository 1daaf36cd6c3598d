package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"qiv/internal/colormod"
	"qiv/internal/geometry"
)

const (
	// Overlay message display duration
	overlayMessageDuration = 2 * time.Second
)

// RenderState provides read-only access to viewer state for the renderer
type RenderState interface {
	IsFullscreen() bool
	IsTransparent() bool

	// Rendering data
	GetTexture() *ebiten.Image
	GetGeometry() geometry.State
	HasLoadError() bool

	// UI state
	IsShowingHelp() bool
	IsShowingStatus() bool
	GetStatusText() string
	IsInJumpMode() bool
	GetJumpBuffer() string
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time

	// Display data
	GetTotalCount() int
	GetFontSize() float64
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
}

// RenderStateSnapshot captures the state that changes without input, so
// frames can be skipped when nothing changed.
type RenderStateSnapshot struct {
	OverlayMessage     string
	OverlayMessageTime time.Time

	WindowWidth  int
	WindowHeight int
}

// NewRenderStateSnapshot creates a lightweight snapshot of non-input state
func NewRenderStateSnapshot(state RenderState, windowWidth, windowHeight int) *RenderStateSnapshot {
	return &RenderStateSnapshot{
		OverlayMessage:     state.GetOverlayMessage(),
		OverlayMessageTime: state.GetOverlayMessageTime(),
		WindowWidth:        windowWidth,
		WindowHeight:       windowHeight,
	}
}

func overlayActive(message string, at time.Time) bool {
	return message != "" && time.Since(at) < overlayMessageDuration
}

// Equals reports whether two snapshots would render the same frame.
func (s *RenderStateSnapshot) Equals(other *RenderStateSnapshot) bool {
	if other == nil {
		return false
	}

	sActive := overlayActive(s.OverlayMessage, s.OverlayMessageTime)
	otherActive := overlayActive(other.OverlayMessage, other.OverlayMessageTime)

	var overlayEqual bool
	switch {
	case sActive != otherActive:
		overlayEqual = false
	case sActive:
		overlayEqual = s.OverlayMessage == other.OverlayMessage &&
			s.OverlayMessageTime.Equal(other.OverlayMessageTime)
	default:
		overlayEqual = s.OverlayMessage == other.OverlayMessage
	}

	return overlayEqual &&
		s.WindowWidth == other.WindowWidth &&
		s.WindowHeight == other.WindowHeight
}

// InputActions provides action methods for the input handler
type InputActions interface {
	Exit()

	// Display toggles
	ToggleHelp()
	ToggleStatusbar()
	ToggleFullscreen()
	ToggleCenter()
	ToggleTransparency()

	// Navigation
	NavigateNext()
	NavigatePrevious()
	JumpFirst()
	JumpLast()
	ToggleRandom()
	ToggleSlideshow()
	CycleSortMethod()

	// Jump prompt
	EnterJumpMode()
	ExitJumpMode()
	ProcessJump()
	UpdateJumpBuffer(buffer string)

	// Geometry
	ZoomIn()
	ZoomOut()
	ZoomReset()
	ToggleMaxpect()
	ToggleScaleDown()
	Rotate(turns int)
	Flip(horizontal bool)
	MoveStep(dx, dy int)
	PanByDelta(dx, dy int)

	// Colour
	AdjustModifier(ch colormod.Channel, steps int)
	ResetModifiers()

	// File operations
	DeleteCurrent()
	Undelete()
	Reload()
	RunCommand(n int)

	ShowOverlayMessage(message string)

	GetCurrentIndex() int
	GetTotalCount() int
}

// InputState provides read-only access to input-related state
type InputState interface {
	IsInJumpMode() bool
	GetJumpBuffer() string
	IsFullscreen() bool
}
