package main

import (
	"bytes"
	"image/color"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"qiv/internal/geometry"
)

// Global font source shared by the renderer and the error image
var globalFontSource *text.GoTextFaceSource

// InitGraphics initializes the global font source for text rendering
func InitGraphics() error {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	globalFontSource = s
	return nil
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// truncateText shortens s to about fit pixels at 10px per character.
func truncateText(s string, fit int) string {
	maxChars := fit / 10
	if maxChars < 4 || len(s) <= maxChars {
		return s
	}
	return s[:maxChars-3] + "..."
}

// CreateErrorImage draws the placeholder shown for a file that could not be
// decoded: the error background with the file name and the reason.
func CreateErrorImage(width, height int, filename, errorMsg string) *ebiten.Image {
	if width <= 0 || height <= 0 {
		width, height = geometry.ErrorWidth, geometry.ErrorHeight
	}

	errorImg := ebiten.NewImage(width, height)
	errorImg.Fill(colorErrorBackground)

	const border = 3
	fw, fh := float64(width), float64(height)
	DrawFilledRect(errorImg, 0, 0, fw, border, colorWhite)
	DrawFilledRect(errorImg, 0, fh-border, fw, border, colorWhite)
	DrawFilledRect(errorImg, 0, 0, border, fh, colorWhite)
	DrawFilledRect(errorImg, fw-border, 0, border, fh, colorWhite)

	if globalFontSource == nil {
		return errorImg
	}

	font := &text.GoTextFace{Source: globalFontSource, Size: 20}
	DrawText(errorImg, "Unable to load image", font, 10, 30, colorWhite)
	DrawText(errorImg, truncateText(filepath.Base(filename), width-20), font, 10, 60, colorWhite)
	DrawText(errorImg, truncateText(errorMsg, width-20), font, 10, 90, colorWhite)
	return errorImg
}
