// Package overlay draws one view on top of another without disturbing the
// background outside the overlay.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Placement controls overlay alignment and sizing.
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	MarginX    int
	MarginY    int
	Width      int
	Height     int
}

// Compose aligns the foreground inside a width x height background.
func Compose(background string, width, height int, foreground string, placement Placement) string {
	fgW, fgH := measure(foreground, placement)
	if fgW <= 0 || fgH <= 0 {
		return strings.Join(normalizeBackground(background, width, height), "\n")
	}
	x, y := computeOffsets(width, height, min(fgW, width), min(fgH, height), placement)
	return At(background, width, height, foreground, x, y)
}

// At draws the foreground with its top-left corner at (x, y). Parts falling
// outside the background are dropped.
func At(background string, width, height int, foreground string, x, y int) string {
	bgLines := normalizeBackground(background, width, height)
	if foreground == "" {
		return strings.Join(bgLines, "\n")
	}
	fgLines := strings.Split(foreground, "\n")
	fgW := 0
	for _, line := range fgLines {
		fgW = max(fgW, ansi.StringWidth(line))
	}

	for row, fgLine := range fgLines {
		destY := y + row
		if destY < 0 || destY >= len(bgLines) {
			continue
		}
		fgLine = padToWidth(fgLine, fgW)

		left := x
		if left < 0 {
			fgLine = ansi.TruncateLeft(fgLine, -left, "")
			left = 0
		}
		if left >= width {
			continue
		}
		if left+ansi.StringWidth(fgLine) > width {
			fgLine = ansi.Truncate(fgLine, width-left, "")
		}
		right := left + ansi.StringWidth(fgLine)

		base := bgLines[destY]
		prefix := ansi.Truncate(base, left, "")
		suffix := ansi.TruncateLeft(base, right, "")
		bgLines[destY] = prefix + fgLine + suffix
	}
	return strings.Join(bgLines, "\n")
}

func measure(foreground string, placement Placement) (int, int) {
	if foreground == "" {
		return 0, 0
	}
	lines := strings.Split(foreground, "\n")
	w := placement.Width
	if w <= 0 {
		for _, line := range lines {
			w = max(w, ansi.StringWidth(line))
		}
	}
	h := placement.Height
	if h <= 0 {
		h = len(lines)
	}
	return w, h
}

func normalizeBackground(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = padToWidth(lines[i], width)
	}
	return lines
}

func padToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

func computeOffsets(width, height, overlayWidth, overlayHeight int, placement Placement) (int, int) {
	h := placement.Horizontal
	if h == 0 {
		h = lipgloss.Center
	}
	v := placement.Vertical
	if v == 0 {
		v = lipgloss.Center
	}

	offsetX := placement.MarginX
	switch h {
	case lipgloss.Right:
		offsetX = width - overlayWidth - placement.MarginX
	case lipgloss.Center:
		offsetX = (width - overlayWidth) / 2
	}
	offsetX = max(0, min(offsetX, width-overlayWidth))

	offsetY := placement.MarginY
	switch v {
	case lipgloss.Bottom:
		offsetY = height - overlayHeight - placement.MarginY
	case lipgloss.Center:
		offsetY = (height - overlayHeight) / 2
	}
	offsetY = max(0, min(offsetY, height-overlayHeight))

	return offsetX, offsetY
}
