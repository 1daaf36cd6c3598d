package main

import "strconv"

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

const runCommandPrefix = "run_command_"

// actionDefinitions lists every action in help order.
var actionDefinitions = append([]ActionDefinition{
	{"exit", []string{"Escape", "KeyQ"}, nil, "Quit"},
	{"help", []string{"Shift+Slash", "F1"}, []string{"Alt+RightClick"}, "Show/hide help"},
	{"statusbar", []string{"KeyI"}, nil, "Show/hide status bar"},

	{"next", []string{"Space", "PageDown"}, []string{"LeftClick", "WheelDown"}, "Next image"},
	{"previous", []string{"Backspace", "PageUp"}, []string{"RightClick", "WheelUp"}, "Previous image"},
	{"first", []string{"Home"}, nil, "First image"},
	{"last", []string{"End"}, nil, "Last image"},
	{"jump", []string{"KeyJ"}, nil, "Jump: f N, b N or t N"},
	{"random", []string{"KeyR"}, nil, "Toggle random order"},
	{"slideshow", []string{"KeyS"}, nil, "Toggle slideshow"},
	{"cycle_sort", []string{"Shift+KeyS"}, nil, "Cycle sort method (Natural/Simple/Entry)"},

	{"zoom_in", []string{"Equal", "Shift+Equal", "NumpadAdd"}, []string{"Ctrl+WheelUp"}, "Zoom in 10%"},
	{"zoom_out", []string{"Minus", "NumpadSubtract"}, []string{"Ctrl+WheelDown"}, "Zoom out 10%"},
	{"zoom_reset", []string{"KeyN"}, nil, "Natural size"},
	{"maxpect", []string{"KeyM"}, []string{"MiddleClick"}, "Toggle fit to screen"},
	{"scale_down", []string{"KeyT"}, nil, "Toggle shrink large images"},
	{"fullscreen", []string{"KeyF"}, nil, "Toggle fullscreen"},
	{"center", []string{"KeyE"}, nil, "Toggle centering"},
	{"transparency", []string{"KeyP"}, nil, "Toggle transparency"},

	{"rotate_left", []string{"KeyL"}, nil, "Rotate left 90 degrees"},
	{"rotate_right", []string{"KeyK"}, nil, "Rotate right 90 degrees"},
	{"flip_h", []string{"KeyH"}, nil, "Flip horizontally"},
	{"flip_v", []string{"KeyV"}, nil, "Flip vertically"},

	{"brightness_up", []string{"KeyB"}, nil, "Brightness +"},
	{"brightness_down", []string{"Shift+KeyB"}, nil, "Brightness -"},
	{"contrast_up", []string{"KeyC"}, nil, "Contrast +"},
	{"contrast_down", []string{"Shift+KeyC"}, nil, "Contrast -"},
	{"gamma_up", []string{"KeyG"}, nil, "Gamma +"},
	{"gamma_down", []string{"Shift+KeyG"}, nil, "Gamma -"},
	{"reset_modifiers", []string{"KeyO"}, nil, "Reset brightness/contrast/gamma"},

	{"delete", []string{"KeyD", "Delete"}, nil, "Move image to .qiv-trash"},
	{"undelete", []string{"KeyU"}, nil, "Restore last deleted image"},
	{"reload", []string{"Ctrl+KeyR"}, nil, "Reload image"},

	{"move_up", []string{"ArrowUp"}, nil, "Move image up"},
	{"move_down", []string{"ArrowDown"}, nil, "Move image down"},
	{"move_left", []string{"ArrowLeft"}, nil, "Move image left"},
	{"move_right", []string{"ArrowRight"}, nil, "Move image right"},
}, commandActionDefinitions()...)

// commandActionDefinitions binds the digit keys to the external command hook.
func commandActionDefinitions() []ActionDefinition {
	defs := make([]ActionDefinition, 0, 10)
	for n := 0; n < 10; n++ {
		d := strconv.Itoa(n)
		defs = append(defs, ActionDefinition{
			Name:        runCommandPrefix + d,
			Keys:        []string{"Key" + d},
			Description: "Run qiv-command " + d,
		})
	}
	return defs
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = append([]string(nil), action.Keys...)
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		if len(action.MouseActions) > 0 {
			mousebindings[action.Name] = append([]string(nil), action.MouseActions...)
		}
	}
	return mousebindings
}
