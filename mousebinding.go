package main

import (
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// MouseSettings contains mouse-specific configuration
type MouseSettings struct {
	WheelSensitivity float64 `json:"wheel_sensitivity"`
	DoubleClickTime  int     `json:"double_click_time"` // milliseconds
	DragThreshold    int     `json:"drag_threshold"`    // pixels
	EnableMouse      bool    `json:"enable_mouse"`
	WheelInverted    bool    `json:"wheel_inverted"`
	EnableDragPan    bool    `json:"enable_drag_pan"`
}

// GetDefaultMouseSettings returns the default mouse settings
func GetDefaultMouseSettings() MouseSettings {
	return MouseSettings{
		WheelSensitivity: 1.0,
		DoubleClickTime:  300,
		DragThreshold:    5,
		EnableMouse:      true,
		EnableDragPan:    true,
	}
}

// DoubleClickTracker tracks double-click state
type DoubleClickTracker struct {
	lastClickTime   time.Time
	lastClickButton ebiten.MouseButton
	clickCount      int
}

// dragTracker follows a left-button drag.
type dragTracker struct {
	active         bool
	panning        bool
	startX, startY int
	lastX, lastY   int
}

// MouseCombination represents a mouse action with optional modifiers
type MouseCombination struct {
	Button        ebiten.MouseButton
	IsWheel       bool
	WheelDeltaX   float64
	WheelDeltaY   float64
	IsDoubleClick bool
	Modifiers
}

// MousebindingManager maps actions to mouse bindings.
type MousebindingManager struct {
	mousebindings      map[string][]string
	mouseMapping       map[string]ebiten.MouseButton
	settings           MouseSettings
	doubleClickTracker DoubleClickTracker
	drag               dragTracker
}

// NewMousebindingManager creates a new MousebindingManager
func NewMousebindingManager(mousebindings map[string][]string, settings MouseSettings) *MousebindingManager {
	return &MousebindingManager{
		mousebindings: mousebindings,
		mouseMapping:  getMouseMapping(),
		settings:      settings,
		doubleClickTracker: DoubleClickTracker{
			lastClickTime: time.Now(),
		},
	}
}

func getMouseMapping() map[string]ebiten.MouseButton {
	return map[string]ebiten.MouseButton{
		"LeftClick":   ebiten.MouseButtonLeft,
		"RightClick":  ebiten.MouseButtonRight,
		"MiddleClick": ebiten.MouseButtonMiddle,
		"Back":        ebiten.MouseButton3,
		"Forward":     ebiten.MouseButton4,
	}
}

// parseMouseString parses "Shift+LeftClick", "WheelUp" or "DoubleLeftClick".
func (mm *MousebindingManager) parseMouseString(mouseStr string) (*MouseCombination, bool) {
	mods, name, ok := parseBinding(mouseStr)
	if !ok {
		return nil, false
	}
	combination := &MouseCombination{Modifiers: mods}

	switch {
	case strings.HasPrefix(name, "Wheel"):
		combination.IsWheel = true
		switch name {
		case "WheelUp":
			combination.WheelDeltaY = 1.0
		case "WheelDown":
			combination.WheelDeltaY = -1.0
		case "WheelLeft":
			combination.WheelDeltaX = -1.0
		case "WheelRight":
			combination.WheelDeltaX = 1.0
		default:
			return nil, false
		}
	case strings.HasPrefix(name, "Double"):
		button, exists := mm.mouseMapping[strings.TrimPrefix(name, "Double")]
		if !exists {
			return nil, false
		}
		combination.IsDoubleClick = true
		combination.Button = button
	default:
		button, exists := mm.mouseMapping[name]
		if !exists {
			return nil, false
		}
		combination.Button = button
	}
	return combination, true
}

func sameSign(want, got float64) bool {
	return (want > 0 && got > 0) || (want < 0 && got < 0)
}

// isMouseActionTriggered checks if a mouse combination fired this frame
func (mm *MousebindingManager) isMouseActionTriggered(combination *MouseCombination) bool {
	if !mm.settings.EnableMouse || !combination.held() {
		return false
	}

	if combination.IsWheel {
		wheelX, wheelY := ebiten.Wheel()
		if mm.settings.WheelInverted {
			wheelY = -wheelY
		}
		wheelX *= mm.settings.WheelSensitivity
		wheelY *= mm.settings.WheelSensitivity
		if combination.WheelDeltaX != 0 {
			return sameSign(combination.WheelDeltaX, wheelX)
		}
		return sameSign(combination.WheelDeltaY, wheelY)
	}

	if combination.IsDoubleClick {
		return mm.checkDoubleClick(combination.Button)
	}

	// a click that ended a drag does not count
	if combination.Button == ebiten.MouseButtonLeft && mm.drag.panning {
		return false
	}
	return inpututil.IsMouseButtonJustReleased(combination.Button)
}

// checkDoubleClick checks if a double-click occurred for the given button
func (mm *MousebindingManager) checkDoubleClick(button ebiten.MouseButton) bool {
	if !inpututil.IsMouseButtonJustPressed(button) {
		return false
	}

	now := time.Now()
	t := &mm.doubleClickTracker
	within := now.Sub(t.lastClickTime) <= time.Duration(mm.settings.DoubleClickTime)*time.Millisecond
	t.lastClickTime = now

	if t.lastClickButton == button && within {
		t.clickCount++
		if t.clickCount == 2 {
			t.clickCount = 0
			return true
		}
		return false
	}
	t.clickCount = 1
	t.lastClickButton = button
	return false
}

// UpdateDrag tracks the left button and returns the cursor movement since
// the last frame once the drag has passed the threshold.
func (mm *MousebindingManager) UpdateDrag() (dx, dy int, ok bool) {
	if !mm.settings.EnableMouse || !mm.settings.EnableDragPan {
		return 0, 0, false
	}
	x, y := ebiten.CursorPosition()
	d := &mm.drag

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		*d = dragTracker{active: true, startX: x, startY: y, lastX: x, lastY: y}
		return 0, 0, false
	case !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if !inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
			*d = dragTracker{}
		}
		return 0, 0, false
	case !d.active:
		return 0, 0, false
	}

	if !d.panning {
		th := mm.settings.DragThreshold
		if abs(x-d.startX) <= th && abs(y-d.startY) <= th {
			return 0, 0, false
		}
		d.panning = true
	}
	dx, dy = x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	return dx, dy, dx != 0 || dy != 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CheckAction checks if any mouse binding for the given action is triggered
func (mm *MousebindingManager) CheckAction(action string) bool {
	for _, mouseStr := range mm.mousebindings[action] {
		combination, valid := mm.parseMouseString(mouseStr)
		if valid && mm.isMouseActionTriggered(combination) {
			return true
		}
	}
	return false
}

// ExecuteAction executes the given action using the InputActions interface
func (mm *MousebindingManager) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	if !mm.CheckAction(action) {
		return false
	}
	return globalActionExecutor.ExecuteAction(action, inputActions, inputState)
}

// GetMousebindings returns the current mouse bindings map (for display purposes)
func (mm *MousebindingManager) GetMousebindings() map[string][]string {
	return mm.mousebindings
}
