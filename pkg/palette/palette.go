// Package palette assigns stable colours to courses so a lecture and its
// tutorials share one hue.
package palette

import (
	"fmt"
	"regexp"

	"github.com/lucasb-eyer/go-colorful"

	"tableflip.dev/termwise/pkg/course"
)

const (
	// AlphaOpaque is used for lectures.
	AlphaOpaque uint8 = 0xff
	// AlphaRequired is used for tutorials and labs.
	AlphaRequired uint8 = 0x90
)

var prefixPattern = regexp.MustCompile(`^[A-Z]+\d+`)

var hexes = []string{
	"#3182ce", // blue
	"#e53e3e", // red
	"#38a169", // green
	"#805ad5", // purple
	"#dd6b20", // orange
	"#319795", // teal
	"#d53f8c", // pink
	"#718096", // gray
	"#d69e2e", // yellow
	"#2c5282", // dark blue
	"#9f7aea", // light purple
	"#f56565", // light red
	"#48bb78", // light green
	"#ed8936", // light orange
	"#0694a2", // cyan
	"#6b46c1", // indigo
}

var colors = func() []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("palette: bad colour %s: %v", h, err))
		}
		out[i] = c
	}
	return out
}()

// Size is the number of distinct hues.
func Size() int {
	return len(colors)
}

// Color is a palette hue with an alpha channel.
type Color struct {
	Base  colorful.Color
	Alpha uint8
}

// Hex is the opaque #rrggbb form.
func (c Color) Hex() string {
	return c.Base.Hex()
}

// CSS is #rrggbbaa.
func (c Color) CSS() string {
	return fmt.Sprintf("%s%02x", c.Base.Hex(), c.Alpha)
}

// Flatten composites the colour over bg, for outputs without alpha.
func (c Color) Flatten(bg colorful.Color) colorful.Color {
	if c.Alpha == AlphaOpaque {
		return c.Base
	}
	return bg.BlendRgb(c.Base, float64(c.Alpha)/255).Clamped()
}

// Prefix extracts the leading letters and digits of an identifier
// ("MATH1007" from "MATH1007A"). Identifiers that do not start that way are
// returned whole.
func Prefix(id string) string {
	if p := prefixPattern.FindString(id); p != "" {
		return p
	}
	return id
}

// Hash is the classic shift-and-subtract string hash. The shift is done in
// 32 bits and the subtraction in 64, so values match what browsers compute
// for the same code.
func Hash(s string) int64 {
	var h int64
	for _, c := range s {
		shifted := int64(int32(uint32(h) << 5))
		h = int64(c) + (shifted - h)
	}
	return h
}

// Index maps an identifier to its palette slot.
func Index(id string) int {
	h := Hash(Prefix(id))
	if h < 0 {
		h = -h
	}
	return int(h % int64(len(colors)))
}

// For returns the opaque colour for an identifier. It is pure.
func For(id string) Color {
	return Color{Base: colors[Index(id)], Alpha: AlphaOpaque}
}

// ForCourse colours a scheduled course: required sessions take their parent's
// hue at reduced opacity.
func ForCourse(sc course.ScheduledCourse) Color {
	c := For(sc.ColorKey())
	if sc.IsRequiredSession {
		c.Alpha = AlphaRequired
	}
	return c
}
