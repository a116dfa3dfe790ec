package printers

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/palette"
	"tableflip.dev/termwise/pkg/tui/components/calendar"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

// termenvPainter colours calendar blocks for a plain terminal stream.
type termenvPainter struct {
	out *termenv.Output
}

func (p termenvPainter) Header(text string) string {
	return p.out.String(text).Bold().String()
}

func (p termenvPainter) Gutter(text string) string {
	return p.out.String(text).Faint().String()
}

func (p termenvPainter) Block(text string, c palette.Color, _ bool) string {
	return p.out.String(text).
		Foreground(p.out.Color("#FFFFFF")).
		Background(p.out.Color(c.Flatten(white).Hex())).
		String()
}

func (pp *PrettyPrint) painter() calendar.Painter {
	if !pp.Color {
		return calendar.Plain{}
	}
	return termenvPainter{out: termenv.NewOutput(pp.Out)}
}

// Calendar draws courses on a weekly grid.
func (pp *PrettyPrint) Calendar(engine *layout.Engine, courses []course.ScheduledCourse) {
	cells := engine.Layout(courses)
	if len(cells) == 0 {
		return
	}
	g := calendar.ForEngine(engine)
	_, _ = fmt.Fprintln(pp.Out, g.Render(cells, pp.painter()))
	pp.NewLine()
}
