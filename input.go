package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputHandler turns key and mouse events into actions.
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager

	chars []rune
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, inputState InputState, km *KeybindingManager, mm *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   km,
		mousebindingManager: mm,
	}
}

// HandleInput processes all input for the current frame and reports
// whether anything happened.
func (h *InputHandler) HandleInput() bool {
	if h.inputActions.GetTotalCount() == 0 {
		return false
	}
	if h.inputState.IsInJumpMode() {
		return h.handleJumpMode()
	}

	inputProcessed := h.handleDrag()
	for _, def := range actionDefinitions {
		// jump mode swallows the rest of the frame, as does deleting the
		// last image
		if h.inputState.IsInJumpMode() || h.inputActions.GetTotalCount() == 0 {
			break
		}
		if h.keybindingManager.ExecuteAction(def.Name, h.inputActions, h.inputState) ||
			h.mousebindingManager.ExecuteAction(def.Name, h.inputActions, h.inputState) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

// handleDrag pans a fullscreen image with the left mouse button.
func (h *InputHandler) handleDrag() bool {
	if !h.inputState.IsFullscreen() {
		return false
	}
	dx, dy, ok := h.mousebindingManager.UpdateDrag()
	if !ok {
		return false
	}
	h.inputActions.PanByDelta(dx, dy)
	return true
}

func (h *InputHandler) handleJumpMode() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.inputActions.ExitJumpMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		h.inputActions.ProcessJump()
		h.inputActions.ExitJumpMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if buf := h.inputState.GetJumpBuffer(); len(buf) > 0 {
			h.inputActions.UpdateJumpBuffer(buf[:len(buf)-1])
		}
		return true
	}

	h.chars = ebiten.AppendInputChars(h.chars[:0])
	if len(h.chars) == 0 {
		return false
	}
	h.inputActions.UpdateJumpBuffer(appendJumpChars(h.inputState.GetJumpBuffer(), h.chars))
	return true
}

// maxJumpInput bounds the jump prompt.
const maxJumpInput = 32

// appendJumpChars appends the printable ASCII characters of chars to buf.
func appendJumpChars(buf string, chars []rune) string {
	for _, r := range chars {
		if len(buf) >= maxJumpInput {
			break
		}
		if r >= ' ' && r <= '~' {
			buf += string(r)
		}
	}
	return buf
}
