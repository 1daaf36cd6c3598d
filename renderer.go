package main

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Common colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorBlack     = color.RGBA{0, 0, 0, 255}
	colorGray      = color.RGBA{180, 180, 180, 255}
	colorLightGray = color.RGBA{192, 192, 192, 255}
	colorYellow    = color.RGBA{255, 255, 100, 255}
	colorCyan      = color.RGBA{100, 255, 255, 255}
	colorLightBlue = color.RGBA{200, 200, 255, 255}
	colorGreen     = color.RGBA{100, 255, 100, 255}
	colorOrange    = color.RGBA{255, 200, 100, 255}
	colorLightRed  = color.RGBA{255, 150, 150, 255}

	// qiv's reserved colours
	colorImageBackground = colorBlack
	colorErrorBackground = color.RGBA{0, 0, 255, 255}
	colorStatusBar       = color.RGBA{0xff, 0xb9, 0x00, 255}

	// Background colors for semi-transparent overlays
	bgColorLight  = color.RGBA{0, 0, 0, 128}
	bgColorMedium = color.RGBA{0, 0, 0, 160}
	bgColorDark   = color.RGBA{0, 0, 0, 200}
)

const (
	helpPadding     = 40.0
	minHelpFontSize = 12.0
	maxHelpWarnings = 2
)

// Renderer handles all drawing operations
type Renderer struct {
	renderState RenderState
	fontSource  *text.GoTextFaceSource
}

// NewRenderer creates a new Renderer
func NewRenderer(renderState RenderState) *Renderer {
	if globalFontSource == nil {
		if err := InitGraphics(); err != nil {
			log.Fatal(err)
		}
	}
	return &Renderer{
		renderState: renderState,
		fontSource:  globalFontSource,
	}
}

func (r *Renderer) face(size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: r.fontSource, Size: size}
}

// Draw renders the entire screen
func (r *Renderer) Draw(screen *ebiten.Image) {
	rs := r.renderState

	// the screen is not cleared every frame
	switch {
	case rs.HasLoadError():
		screen.Fill(colorErrorBackground)
	case rs.IsTransparent() && !rs.IsFullscreen():
		screen.Clear()
	default:
		screen.Fill(colorImageBackground)
	}

	r.drawImage(screen)

	if rs.IsShowingStatus() {
		r.drawStatusBar(screen)
	}
	if rs.IsShowingHelp() {
		r.drawHelpOverlay(screen)
	}
	if rs.IsInJumpMode() {
		r.drawJumpPrompt(screen)
	}
	if overlayActive(rs.GetOverlayMessage(), rs.GetOverlayMessageTime()) {
		r.drawOverlayMessage(screen)
	}
}

// drawImage stretches the texture over the window, or over the image's
// rectangle of the monitor in fullscreen.
func (r *Renderer) drawImage(screen *ebiten.Image) {
	tex := r.renderState.GetTexture()
	if tex == nil {
		return
	}
	tw, th := tex.Bounds().Dx(), tex.Bounds().Dy()
	if tw == 0 || th == 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	if r.renderState.IsFullscreen() {
		st := r.renderState.GetGeometry()
		op.GeoM.Scale(float64(st.WinW)/float64(tw), float64(st.WinH)/float64(th))
		op.GeoM.Translate(float64(st.WinX), float64(st.WinY))
	} else {
		sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
		op.GeoM.Scale(float64(sw)/float64(tw), float64(sh)/float64(th))
	}
	screen.DrawImage(tex, op)
}

func (r *Renderer) drawStatusBar(screen *ebiten.Image) {
	status := r.renderState.GetStatusText()
	if status == "" {
		return
	}
	font := r.face(r.renderState.GetFontSize() * 0.7)
	textWidth, textHeight := text.Measure(status, font, 0)

	padding := 4.0
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	boxW := textWidth + padding*2
	boxH := textHeight + padding*2
	boxX := w - boxW
	boxY := h - boxH

	DrawFilledRect(screen, boxX, boxY, boxW, boxH, colorStatusBar)
	DrawText(screen, status, font, boxX+padding, boxY+padding, colorBlack)
}

// helpRow is one action line of the help overlay.
type helpRow struct {
	action      string
	keys        string
	mouse       string
	description string
}

// helpRows lists the bound actions in definition order.
func (r *Renderer) helpRows() []helpRow {
	keybindings := r.renderState.GetKeybindings()
	mousebindings := r.renderState.GetMousebindings()

	rows := make([]helpRow, 0, len(actionDefinitions))
	for _, def := range actionDefinitions {
		keys := keybindings[def.Name]
		mouse := mousebindings[def.Name]
		if len(keys) == 0 && len(mouse) == 0 {
			continue
		}
		rows = append(rows, helpRow{
			action:      def.Name,
			keys:        strings.Join(keys, ", "),
			mouse:       strings.Join(mouse, ", "),
			description: def.Description,
		})
	}
	return rows
}

func (row helpRow) input() string {
	switch {
	case row.keys != "" && row.mouse != "":
		return row.keys + " | " + row.mouse
	case row.keys != "":
		return row.keys
	default:
		return row.mouse
	}
}

// helpColumns measures the action and input columns at a font size.
func helpColumns(rows []helpRow, font *text.GoTextFace) (actionW, inputW, descW float64) {
	for _, row := range rows {
		w, _ := text.Measure(row.action, font, 0)
		actionW = math.Max(actionW, w)
		w, _ = text.Measure(row.input(), font, 0)
		inputW = math.Max(inputW, w)
		w, _ = text.Measure(row.description, font, 0)
		descW = math.Max(descW, w)
	}
	return actionW, inputW, descW
}

func shortWarnings(warnings []string) []string {
	var out []string
	for i, w := range warnings {
		if i >= maxHelpWarnings {
			break
		}
		if len(w) > 50 {
			w = w[:47] + "..."
		}
		out = append(out, "• "+w)
	}
	return out
}

// helpSize returns the space the help text needs at fontSize.
func (r *Renderer) helpSize(rows []helpRow, fontSize float64) (float64, float64) {
	font := r.face(fontSize)
	lineHeight := fontSize * 1.5
	warnings := shortWarnings(r.renderState.GetConfigStatus().Warnings)

	height := helpPadding*2 + fontSize*2 + lineHeight*1.5
	height += float64(len(rows)) * lineHeight
	height += lineHeight * float64(3+len(warnings))

	actionW, inputW, descW := helpColumns(rows, font)
	width := 40 + actionW + 20 + 30 + inputW + 20 + descW + helpPadding
	for _, w := range warnings {
		ww, _ := text.Measure(w, font, 0)
		width = math.Max(width, ww+helpPadding*2+80)
	}
	return width, height
}

// helpFontSize finds the largest font size up to the configured one at
// which the help fits.
func (r *Renderer) helpFontSize(rows []helpRow, availW, availH float64) (float64, bool) {
	fits := func(size float64) bool {
		w, h := r.helpSize(rows, size)
		return w <= availW && h <= availH
	}

	maxSize := r.renderState.GetFontSize()
	if !fits(minHelpFontSize) {
		return minHelpFontSize, false
	}
	if fits(maxSize) {
		return maxSize, true
	}

	low, high := minHelpFontSize, maxSize
	for high-low > 0.5 {
		mid := (low + high) / 2
		if fits(mid) {
			low = mid
		} else {
			high = mid
		}
	}
	return low, true
}

func (r *Renderer) drawHelpOverlay(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	rows := r.helpRows()

	fontSize, ok := r.helpFontSize(rows, w-helpPadding*2, h-helpPadding*2)
	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)
	if !ok {
		r.drawCentered(screen, "Window too small for help", r.face(minHelpFontSize), colorWhite)
		return
	}

	DrawFilledRect(screen, helpPadding, helpPadding, w-helpPadding*2, h-helpPadding*2, bgColorMedium)

	font := r.face(fontSize)
	lineHeight := fontSize * 1.5
	x := helpPadding + 20
	y := helpPadding + 30

	DrawText(screen, "qiv keys:", font, x, y, colorWhite)
	y += fontSize * 2

	actionW, inputW, _ := helpColumns(rows, font)
	actionX := helpPadding + 40
	inputX := actionX + actionW + 50
	descX := inputX + inputW + 20

	for _, row := range rows {
		DrawText(screen, row.action, font, actionX, y, colorLightBlue)
		DrawText(screen, "→", font, actionX+actionW+20, y, colorWhite)

		cx := inputX
		if row.keys != "" {
			DrawText(screen, row.keys, font, cx, y, colorYellow)
			kw, _ := text.Measure(row.keys, font, 0)
			cx += kw
		}
		if row.keys != "" && row.mouse != "" {
			DrawText(screen, " | ", font, cx, y, colorWhite)
			sw, _ := text.Measure(" | ", font, 0)
			cx += sw
		}
		if row.mouse != "" {
			DrawText(screen, row.mouse, font, cx, y, colorCyan)
		}
		DrawText(screen, row.description, font, descX, y, colorGray)
		y += lineHeight
	}

	y += lineHeight
	configStatus := r.renderState.GetConfigStatus()
	statusColor := colorGreen
	if configStatus.Status == "Warning" || configStatus.Status == "Error" {
		statusColor = colorOrange
	}
	DrawText(screen, fmt.Sprintf("Config: %s", configStatus.Status), font, x, y, statusColor)
	y += lineHeight
	for _, warning := range shortWarnings(configStatus.Warnings) {
		DrawText(screen, warning, font, x+20, y, colorLightRed)
		y += lineHeight
	}
}

func (r *Renderer) drawJumpPrompt(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	inputFont := r.face(r.renderState.GetFontSize())
	hintFont := r.face(r.renderState.GetFontSize() * 0.8)

	inputText := fmt.Sprintf("Jump to: %s_", r.renderState.GetJumpBuffer())
	hintText := fmt.Sprintf("f N | b N | t N  (1-%d)", r.renderState.GetTotalCount())

	inputW, inputH := text.Measure(inputText, inputFont, 0)
	hintW, hintH := text.Measure(hintText, hintFont, 0)

	padding := 20.0
	boxW := math.Max(inputW, hintW) + padding*2
	boxH := inputH + hintH + 10 + padding*2
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	DrawFilledRect(screen, boxX, boxY, boxW, boxH, bgColorDark)
	DrawText(screen, inputText, inputFont, boxX+(boxW-inputW)/2, boxY+padding, colorWhite)
	DrawText(screen, hintText, hintFont, boxX+(boxW-hintW)/2, boxY+padding+inputH+10, colorLightGray)
}

func (r *Renderer) drawOverlayMessage(screen *ebiten.Image) {
	r.drawCentered(screen, r.renderState.GetOverlayMessage(), r.face(r.renderState.GetFontSize()), colorWhite)
}

// drawCentered draws msg in a dark box in the middle of the screen.
func (r *Renderer) drawCentered(screen *ebiten.Image, msg string, font *text.GoTextFace, clr color.RGBA) {
	textW, textH := text.Measure(msg, font, 0)
	padding := 20.0
	boxW := textW + padding*2
	boxH := textH + padding*2
	boxX := (float64(screen.Bounds().Dx()) - boxW) / 2
	boxY := (float64(screen.Bounds().Dy()) - boxH) / 2

	DrawFilledRect(screen, boxX, boxY, boxW, boxH, bgColorDark)
	DrawText(screen, msg, font, boxX+padding, boxY+padding, clr)
}
