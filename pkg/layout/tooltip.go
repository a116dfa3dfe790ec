package layout

import (
	"tableflip.dev/termwise/pkg/timeutil"
)

// TooltipOffset separates the tooltip from the pointer.
const TooltipOffset = 10

// Point is a position relative to the calendar container.
type Point struct {
	X, Y int
}

// Box is a measured width and height.
type Box struct {
	W, H int
}

// Rect is a positioned box.
type Rect struct {
	X, Y, W, H int
}

// Bounds is what the tooltip must stay inside: the visible viewport and the
// calendar container, both in container coordinates.
type Bounds struct {
	Viewport  Box
	Container Rect
}

// Tooltip is placed in two passes. BeginTooltip gives a tentative position
// before the box is drawn; once the renderer knows the box size it calls
// Correct. Both passes are constant time.
type Tooltip struct {
	Cell    Cell
	Pointer Point
	Pos     Point
	Lines   []string
	// Offset separates the box from the pointer on both axes.
	Offset int
	// Measured is set once Correct has run.
	Measured bool
}

// BeginTooltip opens a tooltip for cell at the pointer.
func BeginTooltip(cell Cell, pointer Point) Tooltip {
	return Tooltip{
		Cell:    cell,
		Pointer: pointer,
		Pos:     Point{X: pointer.X + TooltipOffset, Y: pointer.Y + TooltipOffset},
		Lines:   TooltipLines(cell),
		Offset:  TooltipOffset,
	}
}

// WithOffset changes the pointer offset, for renderers measuring in
// characters rather than pixels.
func (t Tooltip) WithOffset(n int) Tooltip {
	t.Offset = n
	return t.Move(t.Pointer)
}

// Move follows the pointer, discarding any previous correction.
func (t Tooltip) Move(pointer Point) Tooltip {
	t.Pointer = pointer
	t.Pos = Point{X: pointer.X + t.Offset, Y: pointer.Y + t.Offset}
	t.Measured = false
	return t
}

// Correct flips the tooltip above or left of the pointer when the measured
// box would overflow the viewport, then keeps it vertically inside the
// container.
func (t Tooltip) Correct(box Box, b Bounds) Tooltip {
	x := t.Pointer.X + t.Offset
	y := t.Pointer.Y + t.Offset

	if y+box.H > b.Viewport.H {
		y = t.Pointer.Y - box.H - t.Offset
	}
	if x+box.W > b.Viewport.W {
		x = t.Pointer.X - box.W - t.Offset
	}

	if bottom := b.Container.Y + b.Container.H; y+box.H > bottom {
		y = bottom - box.H
	}
	if y < b.Container.Y {
		y = b.Container.Y
	}

	t.Pos = Point{X: x, Y: y}
	t.Measured = true
	return t
}

// TooltipLines is the tooltip body for a cell.
func TooltipLines(c Cell) []string {
	title := c.DisplayTitle
	if title == "" {
		title = c.Title
	}
	section := c.SectionType
	if c.Required {
		section += " (" + RequiredLabel + ")"
	}

	lines := []string{
		c.CourseCode,
		title,
		timeutil.FormatRange(c.Start, c.End),
		section,
		"Instructor: " + c.Instructor,
	}
	if c.Required {
		lines = append(lines, "Associated with: "+c.RequiredFor)
	}
	return lines
}
