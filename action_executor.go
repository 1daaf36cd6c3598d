package main

import (
	"strconv"
	"strings"

	"qiv/internal/colormod"
)

// ActionExecutor maps action names onto InputActions calls, shared by the
// keyboard and mouse binding managers.
type ActionExecutor struct{}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction runs action and reports whether the name was known.
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "help":
		inputActions.ToggleHelp()
	case "statusbar":
		inputActions.ToggleStatusbar()

	case "next":
		inputActions.NavigateNext()
	case "previous":
		inputActions.NavigatePrevious()
	case "first":
		inputActions.JumpFirst()
	case "last":
		inputActions.JumpLast()
	case "jump":
		if !inputState.IsInJumpMode() {
			inputActions.EnterJumpMode()
		}
	case "random":
		inputActions.ToggleRandom()
	case "slideshow":
		inputActions.ToggleSlideshow()
	case "cycle_sort":
		inputActions.CycleSortMethod()

	case "zoom_in":
		inputActions.ZoomIn()
	case "zoom_out":
		inputActions.ZoomOut()
	case "zoom_reset":
		inputActions.ZoomReset()
	case "maxpect":
		inputActions.ToggleMaxpect()
	case "scale_down":
		inputActions.ToggleScaleDown()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "center":
		inputActions.ToggleCenter()
	case "transparency":
		inputActions.ToggleTransparency()

	case "rotate_left":
		inputActions.Rotate(-1)
	case "rotate_right":
		inputActions.Rotate(1)
	case "flip_h":
		inputActions.Flip(true)
	case "flip_v":
		inputActions.Flip(false)

	case "brightness_up":
		inputActions.AdjustModifier(colormod.Brightness, 1)
	case "brightness_down":
		inputActions.AdjustModifier(colormod.Brightness, -1)
	case "contrast_up":
		inputActions.AdjustModifier(colormod.Contrast, 1)
	case "contrast_down":
		inputActions.AdjustModifier(colormod.Contrast, -1)
	case "gamma_up":
		inputActions.AdjustModifier(colormod.Gamma, 1)
	case "gamma_down":
		inputActions.AdjustModifier(colormod.Gamma, -1)
	case "reset_modifiers":
		inputActions.ResetModifiers()

	case "delete":
		inputActions.DeleteCurrent()
	case "undelete":
		inputActions.Undelete()
	case "reload":
		inputActions.Reload()

	case "move_up":
		inputActions.MoveStep(0, -1)
	case "move_down":
		inputActions.MoveStep(0, 1)
	case "move_left":
		inputActions.MoveStep(-1, 0)
	case "move_right":
		inputActions.MoveStep(1, 0)

	default:
		rest, ok := strings.CutPrefix(action, runCommandPrefix)
		if !ok {
			return false
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || n > 9 {
			return false
		}
		inputActions.RunCommand(n)
	}

	return true
}

// globalActionExecutor is the global instance of ActionExecutor used throughout the application
var globalActionExecutor = NewActionExecutor()
