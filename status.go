package main

import (
	"fmt"
	"unicode/utf8"

	"qiv/internal/colormod"
)

const (
	// maxStatusLen bounds the status line in bytes.
	maxStatusLen = 1024
	// noInfo is shown when no command output is pending.
	noInfo = "(-)"
)

// StatusInfo is the data summarised by the status line.
type StatusInfo struct {
	Name        string
	Width       int
	Height      int
	LoadSeconds float64
	ZoomPercent int
	Index       int // 0-based
	Total       int
	Modifier    colormod.Modifier
	Info        string
	Failed      bool // decoding failed; only Name is shown
}

// buildStatusText formats the status line. It never exceeds maxStatusLen
// bytes.
func buildStatusText(s StatusInfo) string {
	if s.Failed {
		return truncateBytes("qiv: ERROR! cannot load image: "+s.Name, maxStatusLen)
	}
	info := s.Info
	if info == "" {
		info = noInfo
	}
	b, c, g := s.Modifier.Offsets()
	out := fmt.Sprintf("qiv: %s (%dx%d) %1.01fs %d%% [%d/%d] b%d/c%d/g%d %s",
		s.Name, s.Width, s.Height, s.LoadSeconds, s.ZoomPercent,
		s.Index+1, s.Total, b, c, g, info)
	return truncateBytes(out, maxStatusLen)
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
