package main

import (
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Modifiers is the modifier part of a binding such as "Ctrl+Shift+KeyR".
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// parseModifier returns the single-modifier Modifiers for name.
func parseModifier(name string) (Modifiers, bool) {
	switch strings.ToLower(name) {
	case "shift":
		return Modifiers{Shift: true}, true
	case "ctrl":
		return Modifiers{Ctrl: true}, true
	case "alt":
		return Modifiers{Alt: true}, true
	}
	return Modifiers{}, false
}

// parseBinding splits a binding string into its modifiers and final name.
func parseBinding(s string) (Modifiers, string, bool) {
	parts := strings.Split(s, "+")
	var mods Modifiers
	for _, p := range parts[:len(parts)-1] {
		m, ok := parseModifier(p)
		if !ok {
			return Modifiers{}, "", false
		}
		mods.Shift = mods.Shift || m.Shift
		mods.Ctrl = mods.Ctrl || m.Ctrl
		mods.Alt = mods.Alt || m.Alt
	}
	return mods, parts[len(parts)-1], true
}

// held reports whether exactly these modifiers are down.
func (m Modifiers) held() bool {
	return m.Shift == ebiten.IsKeyPressed(ebiten.KeyShift) &&
		m.Ctrl == ebiten.IsKeyPressed(ebiten.KeyControl) &&
		m.Alt == ebiten.IsKeyPressed(ebiten.KeyAlt)
}

// KeybindingManager maps actions to keyboard bindings.
type KeybindingManager struct {
	keybindings map[string][]string
	keyMapping  map[string]ebiten.Key
}

// NewKeybindingManager creates a new KeybindingManager
func NewKeybindingManager(keybindings map[string][]string) *KeybindingManager {
	return &KeybindingManager{
		keybindings: keybindings,
		keyMapping:  getKeyMapping(),
	}
}

// getKeyMapping returns the key names usable in bindings.
func getKeyMapping() map[string]ebiten.Key {
	m := map[string]ebiten.Key{
		"Space":      ebiten.KeySpace,
		"Backspace":  ebiten.KeyBackspace,
		"Enter":      ebiten.KeyEnter,
		"Escape":     ebiten.KeyEscape,
		"Tab":        ebiten.KeyTab,
		"Delete":     ebiten.KeyDelete,
		"Insert":     ebiten.KeyInsert,
		"Home":       ebiten.KeyHome,
		"End":        ebiten.KeyEnd,
		"PageUp":     ebiten.KeyPageUp,
		"PageDown":   ebiten.KeyPageDown,
		"ArrowUp":    ebiten.KeyArrowUp,
		"ArrowDown":  ebiten.KeyArrowDown,
		"ArrowLeft":  ebiten.KeyArrowLeft,
		"ArrowRight": ebiten.KeyArrowRight,

		"Comma":        ebiten.KeyComma,
		"Period":       ebiten.KeyPeriod,
		"Slash":        ebiten.KeySlash,
		"Semicolon":    ebiten.KeySemicolon,
		"Quote":        ebiten.KeyQuote,
		"Minus":        ebiten.KeyMinus,
		"Equal":        ebiten.KeyEqual,
		"BracketLeft":  ebiten.KeyBracketLeft,
		"BracketRight": ebiten.KeyBracketRight,

		"NumpadAdd":      ebiten.KeyNumpadAdd,
		"NumpadSubtract": ebiten.KeyNumpadSubtract,
		"NumpadEnter":    ebiten.KeyNumpadEnter,

		"KeyA": ebiten.KeyA, "KeyB": ebiten.KeyB, "KeyC": ebiten.KeyC, "KeyD": ebiten.KeyD,
		"KeyE": ebiten.KeyE, "KeyF": ebiten.KeyF, "KeyG": ebiten.KeyG, "KeyH": ebiten.KeyH,
		"KeyI": ebiten.KeyI, "KeyJ": ebiten.KeyJ, "KeyK": ebiten.KeyK, "KeyL": ebiten.KeyL,
		"KeyM": ebiten.KeyM, "KeyN": ebiten.KeyN, "KeyO": ebiten.KeyO, "KeyP": ebiten.KeyP,
		"KeyQ": ebiten.KeyQ, "KeyR": ebiten.KeyR, "KeyS": ebiten.KeyS, "KeyT": ebiten.KeyT,
		"KeyU": ebiten.KeyU, "KeyV": ebiten.KeyV, "KeyW": ebiten.KeyW, "KeyX": ebiten.KeyX,
		"KeyY": ebiten.KeyY, "KeyZ": ebiten.KeyZ,

		"F1": ebiten.KeyF1, "F2": ebiten.KeyF2, "F3": ebiten.KeyF3, "F4": ebiten.KeyF4,
		"F5": ebiten.KeyF5, "F6": ebiten.KeyF6, "F7": ebiten.KeyF7, "F8": ebiten.KeyF8,
		"F9": ebiten.KeyF9, "F10": ebiten.KeyF10, "F11": ebiten.KeyF11, "F12": ebiten.KeyF12,
	}
	for i, key := range digitKeys {
		m["Key"+strconv.Itoa(i)] = key
	}
	for i, key := range numpadKeys {
		m["Numpad"+strconv.Itoa(i)] = key
	}
	return m
}

var (
	digitKeys = [10]ebiten.Key{
		ebiten.Key0, ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
		ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
	numpadKeys = [10]ebiten.Key{
		ebiten.KeyNumpad0, ebiten.KeyNumpad1, ebiten.KeyNumpad2, ebiten.KeyNumpad3, ebiten.KeyNumpad4,
		ebiten.KeyNumpad5, ebiten.KeyNumpad6, ebiten.KeyNumpad7, ebiten.KeyNumpad8, ebiten.KeyNumpad9,
	}
)

// KeyCombination represents a key with optional modifiers
type KeyCombination struct {
	Key ebiten.Key
	Modifiers
}

// parseKeyString parses a key string like "Shift+KeyB" into a KeyCombination
func (km *KeybindingManager) parseKeyString(keyStr string) (*KeyCombination, bool) {
	mods, name, ok := parseBinding(keyStr)
	if !ok {
		return nil, false
	}
	key, exists := km.keyMapping[name]
	if !exists {
		return nil, false
	}
	return &KeyCombination{Key: key, Modifiers: mods}, true
}

// isKeyPressed reports a fresh press of the key with exactly its modifiers.
func (km *KeybindingManager) isKeyPressed(combination *KeyCombination) bool {
	return inpututil.IsKeyJustPressed(combination.Key) && combination.held()
}

// CheckAction checks if any keybinding for the given action is pressed
func (km *KeybindingManager) CheckAction(action string) bool {
	for _, keyStr := range km.keybindings[action] {
		combination, valid := km.parseKeyString(keyStr)
		if valid && km.isKeyPressed(combination) {
			return true
		}
	}
	return false
}

// ExecuteAction executes the given action using the InputActions interface
func (km *KeybindingManager) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	if !km.CheckAction(action) {
		return false
	}
	return globalActionExecutor.ExecuteAction(action, inputActions, inputState)
}

// GetKeybindings returns the current keybindings map (for display purposes)
func (km *KeybindingManager) GetKeybindings() map[string][]string {
	return km.keybindings
}
