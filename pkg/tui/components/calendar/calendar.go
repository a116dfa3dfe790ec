// Package calendar draws laid-out schedule cells as a weekly character grid.
package calendar

import (
	"math"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/palette"
	"tableflip.dev/termwise/pkg/timeutil"
)

const (
	// DefaultColumnWidth fits "COMP1405B1" plus a margin.
	DefaultColumnWidth = 14
	// DefaultRowMinutes is the time covered by one text row.
	DefaultRowMinutes = 30

	// GutterWidth is the time label column on the left.
	GutterWidth = 9

	tail = "…"
)

// Painter styles the pieces of the grid. Text handed to a painter is already
// cut and padded to its final width.
type Painter interface {
	Header(text string) string
	Gutter(text string) string
	Block(text string, c palette.Color, focused bool) string
}

// Plain paints nothing.
type Plain struct{}

func (Plain) Header(text string) string { return text }

func (Plain) Gutter(text string) string { return text }

func (Plain) Block(text string, _ palette.Color, _ bool) string { return text }

// Grid is the geometry of a rendered week.
type Grid struct {
	Columns     []string
	Window      timeutil.Window
	ColumnWidth int
	RowMinutes  int
	// Focus is the key of the highlighted cell.
	Focus string
}

// ForEngine returns a grid matching the engine's columns and window.
func ForEngine(e *layout.Engine) Grid {
	return Grid{
		Columns: e.Columns(),
		Window:  e.Config().Window,
	}
}

func (g Grid) colWidth() int {
	if g.ColumnWidth <= 0 {
		return DefaultColumnWidth
	}
	return g.ColumnWidth
}

func (g Grid) rowMinutes() int {
	if g.RowMinutes <= 0 {
		return DefaultRowMinutes
	}
	return g.RowMinutes
}

// Rows is the number of time rows below the header.
func (g Grid) Rows() int {
	span := g.Window.Span()
	rm := g.rowMinutes()
	return (span + rm - 1) / rm
}

// Size is the rendered width and height, header included.
func (g Grid) Size() layout.Box {
	return layout.Box{W: GutterWidth + len(g.Columns)*g.colWidth(), H: g.Rows() + 1}
}

// span converts a cell's clamped times into a row range [top, bottom).
func (g Grid) span(c layout.Cell) (int, int) {
	rows := g.Rows()
	rm := g.rowMinutes()
	cs := g.Window.Clamp(c.Start.Minutes()) - g.Window.Start
	ce := g.Window.Clamp(c.End.Minutes()) - g.Window.Start
	top := cs / rm
	bottom := (ce + rm - 1) / rm
	if bottom <= top {
		bottom = top + 1
	}
	if top >= rows {
		top = rows - 1
	}
	if bottom > rows {
		bottom = rows
	}
	return top, bottom
}

// Position is the top-left character of a cell, in grid coordinates.
func (g Grid) Position(c layout.Cell) layout.Point {
	top, _ := g.span(c)
	return layout.Point{X: GutterWidth + c.Column*g.colWidth(), Y: top + 1}
}

// Render draws cells. When cells overlap in a column the earlier one keeps
// the contested rows.
func (g Grid) Render(cells []layout.Cell, p Painter) string {
	if p == nil {
		p = Plain{}
	}
	rows := g.Rows()
	width := g.colWidth()

	// owner[col][row] is the index of the cell drawn there, -1 when empty.
	owner := make([][]int, len(g.Columns))
	for col := range owner {
		owner[col] = make([]int, rows)
		for r := range owner[col] {
			owner[col][r] = -1
		}
	}
	tops := make([]int, len(cells))
	for i, c := range cells {
		if c.Column < 0 || c.Column >= len(g.Columns) {
			continue
		}
		top, bottom := g.span(c)
		tops[i] = top
		for r := top; r < bottom; r++ {
			if owner[c.Column][r] == -1 {
				owner[c.Column][r] = i
			}
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", GutterWidth))
	for _, day := range g.Columns {
		b.WriteString(p.Header(fit(day, width)))
	}

	rm := g.rowMinutes()
	for r := 0; r < rows; r++ {
		b.WriteByte('\n')
		minute := g.Window.Start + r*rm
		label := ""
		if minute%60 == 0 {
			label = timeutil.FromMinutes(minute).Format12()
		}
		b.WriteString(p.Gutter(fit(label, GutterWidth)))

		for col := range g.Columns {
			i := owner[col][r]
			if i < 0 {
				b.WriteString(strings.Repeat(" ", width))
				continue
			}
			c := cells[i]
			text := ""
			if lines := Lines(c); r-tops[i] < len(lines) && r-tops[i] >= 0 {
				text = " " + lines[r-tops[i]]
			}
			b.WriteString(p.Block(fit(text, width), c.Color, c.Key == g.Focus))
		}
	}
	return b.String()
}

// Lines is the text shown inside a cell, top to bottom.
func Lines(c layout.Cell) []string {
	lines := []string{c.CourseCode}
	if c.Size == layout.SizeVeryShort {
		return lines
	}
	if c.Label != "" {
		lines = append(lines, c.Label)
	} else if c.DisplayTitle != "" {
		lines = append(lines, c.DisplayTitle)
	}
	if c.TimeLabel != "" {
		lines = append(lines, c.TimeLabel)
	}
	return lines
}

// fit truncates s to width with an ellipsis and pads it with spaces.
func fit(s string, width int) string {
	if ansi.PrintableRuneWidth(s) > width {
		s = truncate.StringWithTail(s, uint(width), tail)
	}
	return padding.String(s, uint(width))
}

// Move returns the key of the cell reached from key by stepping dx columns
// or dy cells within a column. Cells must be ordered as layout returns them.
// An unknown key selects the first cell.
func Move(cells []layout.Cell, key string, dx, dy int) string {
	if len(cells) == 0 {
		return ""
	}
	i := layout.Find(cells, key)
	if i < 0 {
		return cells[0].Key
	}
	cur := cells[i]

	if dy != 0 {
		j := i + dy
		if j >= 0 && j < len(cells) && cells[j].Column == cur.Column {
			return cells[j].Key
		}
		return cur.Key
	}
	if dx == 0 {
		return cur.Key
	}

	// Nearest start time in the closest non-empty column in that direction.
	best, bestCol, bestDist := -1, -1, math.MaxFloat64
	for j, c := range cells {
		if (dx > 0 && c.Column <= cur.Column) || (dx < 0 && c.Column >= cur.Column) {
			continue
		}
		if bestCol != -1 && c.Column != bestCol {
			closer := (dx > 0 && c.Column < bestCol) || (dx < 0 && c.Column > bestCol)
			if !closer {
				continue
			}
			bestDist = math.MaxFloat64
		}
		d := math.Abs(c.TopPercent - cur.TopPercent)
		if d < bestDist {
			best, bestCol, bestDist = j, c.Column, d
		}
	}
	if best < 0 {
		return cur.Key
	}
	return cells[best].Key
}
