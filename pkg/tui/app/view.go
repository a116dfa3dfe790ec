package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/results"
	"tableflip.dev/termwise/pkg/tui/components/calendar"
	"tableflip.dev/termwise/pkg/tui/ui/overlay"
)

const (
	prefsWidth     = 34
	minColumnWidth = 8
	maxColumnWidth = 18
	tooltipOffset  = 1
)

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.state.Snapshot()

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPreferences(snap.Preferences),
		" ",
		m.renderCalendar(snap.Result),
	)

	parts := []string{
		m.renderHeader(snap.Term, snap.Result),
		body,
		m.renderFooter(),
	}
	view := strings.Join(parts, "\n")
	if m.mode != modeHelp {
		return view
	}
	w, h := m.width, m.height
	if w <= 0 || h <= 0 {
		w, h = lipgloss.Width(view), lipgloss.Height(view)
	}
	return overlay.Compose(view, w, h, m.help.View(), overlay.Placement{
		Horizontal: lipgloss.Center,
		Vertical:   lipgloss.Center,
	})
}

func (m *Model) renderHeader(current course.Term, r results.TermResult) string {
	th := m.theme.Header
	var terms []string
	for _, t := range course.Terms() {
		style := th.TermInactive
		if t == current {
			style = th.TermActive
		}
		terms = append(terms, style.Render(m.termLabel(t)))
	}

	parts := []string{th.Title.Render("termwise"), strings.Join(terms, "")}
	if !r.Empty() {
		parts = append(parts, th.Position.Render(r.Position()))
	}
	if r.IsDemo {
		parts = append(parts, th.Demo.Render("demo data"))
	}
	if m.busy {
		parts = append(parts, m.theme.Footer.Busy.Render("generating…"))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderPreferences(p course.TermPreferences) string {
	th := m.theme.Panel
	var b strings.Builder

	b.WriteString(th.Title.Render(fmt.Sprintf("Courses (%d/%d)", len(p.Courses), course.MaxCourses)))
	for i, c := range p.Courses {
		code := c.CourseCode
		if code == "" {
			code = th.Muted.Render("(empty)")
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, code)
		if len(c.SectionTypes) > 0 {
			names := make([]string, 0, len(c.SectionTypes))
			for _, st := range c.SectionTypes {
				names = append(names, string(st))
			}
			b.WriteString(th.Muted.Render(" " + strings.Join(names, "/")))
		}
		if c.PreferredInstructor != "" {
			b.WriteString("\n   " + th.Muted.Render(c.PreferredInstructor))
		}
	}

	b.WriteString("\n\n" + th.Title.Render("Buffer") + " " + p.BufferTime.String())
	b.WriteString("\n\n" + th.Title.Render("Availability"))
	for _, d := range p.DailyAvailability {
		fmt.Fprintf(&b, "\n%-4s %s  max %d", string(d.Day)[:3], buckets(d), d.MaxClassesPerDay)
	}

	return th.Frame.Width(prefsWidth).Render(b.String())
}

// buckets renders availability as M A E with gaps for missing buckets.
func buckets(d course.DailyAvailability) string {
	out := make([]string, 0, 3)
	for _, t := range course.AllTimesOfDay() {
		if d.Has(t) {
			out = append(out, string(t)[:1])
		} else {
			out = append(out, "·")
		}
	}
	return strings.Join(out, " ")
}

func (m *Model) grid() calendar.Grid {
	g := calendar.ForEngine(m.engine)
	g.Focus = m.focus
	if m.width > 0 && len(g.Columns) > 0 {
		avail := m.width - prefsWidth - 3 - calendar.GutterWidth
		g.ColumnWidth = min(maxColumnWidth, max(minColumnWidth, avail/len(g.Columns)))
	}
	return g
}

func (m *Model) renderCalendar(r results.TermResult) string {
	if r.Empty() {
		msg := "No schedule yet. Enter course codes and press g to generate."
		if r.Message != "" {
			msg = r.Message
		}
		return m.theme.Panel.Muted.Render(msg)
	}

	cells := m.engine.Layout(r.Displayed())
	g := m.grid()
	view := g.Render(cells, m.theme.Calendar)
	if !m.showTooltip {
		return view
	}

	i := layout.Find(cells, m.focus)
	if i < 0 {
		return view
	}
	return m.withTooltip(view, g, cells[i])
}

// withTooltip places the focused cell's details next to it, flipping and
// clamping so the box stays on the calendar.
func (m *Model) withTooltip(view string, g calendar.Grid, cell layout.Cell) string {
	size := g.Size()
	tip := layout.BeginTooltip(cell, g.Position(cell)).WithOffset(tooltipOffset)

	th := m.theme.Tooltip
	lines := append([]string{th.Title.Render(tip.Lines[0])}, tip.Lines[1:]...)
	box := th.Frame.Render(strings.Join(lines, "\n"))

	viewport := size
	if m.width > 0 {
		viewport.W = min(size.W, m.width-prefsWidth-3)
	}
	tip = tip.Correct(
		layout.Box{W: lipgloss.Width(box), H: lipgloss.Height(box)},
		layout.Bounds{Viewport: viewport, Container: layout.Rect{W: size.W, H: size.H}},
	)
	x := max(0, tip.Pos.X)
	return overlay.At(view, size.W, size.H, box, x, tip.Pos.Y)
}

func (m *Model) renderFooter() string {
	th := m.theme.Footer
	if m.mode == modeCommand {
		return m.input.View()
	}
	status := th.Status.Render(m.status)
	if m.statusErr {
		status = th.Error.Render(m.status)
	}
	help := th.Help.Render("tab term · n/p alternative · ←↓↑→ move · enter details · g generate · : command · ? help · q quit")
	return status + "\n" + help
}
