// Package printers renders schedules and preferences for the command line.
package printers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/results"
	"tableflip.dev/termwise/pkg/timeutil"
)

// PrettyPrint writes human readable output to Out.
type PrettyPrint struct {
	Out   io.Writer
	Color bool
}

// New prints to w, in colour when w is a terminal.
func New(w io.Writer) *PrettyPrint {
	return &PrettyPrint{Out: w, Color: IsTerminal(w) && !color.NoColor}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (pp *PrettyPrint) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if pp.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.Out, "")
}

func (pp *PrettyPrint) Title(title string) {
	_, _ = pp.style(color.Bold, color.Underline).Fprintln(pp.Out, title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := pp.style(color.Bold, color.Underline)
	c := pp.style(color.Faint)

	_, _ = t.Fprint(pp.Out, title)
	_, _ = c.Fprintf(pp.Out, " - %d %s", count, noun)
	if count != 1 {
		_, _ = c.Fprint(pp.Out, "s")
	}
	_, _ = fmt.Fprintln(pp.Out, "")
}

// Warn prints a highlighted note.
func (pp *PrettyPrint) Warn(msg string) {
	_, _ = pp.style(color.FgHiYellow).Fprintln(pp.Out, msg)
}

// Result prints the displayed schedule of a term with its position.
func (pp *PrettyPrint) Result(label string, r results.TermResult) {
	if r.Empty() {
		pp.Title(label)
		_, _ = pp.style(color.Faint, color.Italic).Fprintln(pp.Out, " no schedule generated")
		return
	}
	displayed := r.Displayed()
	pp.TitleWithCount(fmt.Sprintf("%s · %s", label, r.Position()), len(displayed), "course")
	if r.IsDemo {
		pp.Warn("Demo schedule: the optimizer could not reach the course catalogue.")
	}
	if r.Message != "" {
		_, _ = pp.style(color.Faint).Fprintln(pp.Out, r.Message)
	}
	pp.Schedule(displayed)
}

// Schedule prints one row per session, ordered as the optimizer sent them.
func (pp *PrettyPrint) Schedule(courses []course.ScheduledCourse) {
	if len(courses) == 0 {
		_, _ = pp.style(color.Faint, color.Italic).Fprint(pp.Out, " none\n\n")
		return
	}
	bold := pp.style(color.Bold)
	faint := pp.style(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("Course"), bold.Sprint("Day"), bold.Sprint("Time"), bold.Sprint("Type"), bold.Sprint("Instructor"), bold.Sprint("Notes"))
	for _, c := range courses {
		notes := c.MatchReason
		if c.IsRequiredSession {
			notes = layout.RequiredLabel + " for " + c.RequiredFor
		}
		for _, s := range c.Times {
			when := timeutil.FormatRange(timeutil.ParseClock(s.Start), timeutil.ParseClock(s.End))
			tbl.AddRow(c.CourseCode, s.Day, when, c.SectionType, c.Instructor, faint.Sprint(notes))
		}
	}
	_, _ = fmt.Fprintln(pp.Out, tbl)
	pp.NewLine()
}

// Preferences prints a term's preferences.
func (pp *PrettyPrint) Preferences(label string, p course.TermPreferences) {
	bold := pp.style(color.Bold)
	faint := pp.style(color.Faint)

	pp.TitleWithCount(label, len(p.Courses), "course")
	tbl := uitable.New()
	tbl.Separator = "  "
	for i, c := range p.Courses {
		code := c.CourseCode
		if code == "" {
			code = faint.Sprint("(empty)")
		}
		types := "any"
		if len(c.SectionTypes) > 0 {
			names := make([]string, 0, len(c.SectionTypes))
			for _, st := range c.SectionTypes {
				names = append(names, string(st))
			}
			types = strings.Join(names, ", ")
		}
		tbl.AddRow(fmt.Sprintf("%d.", i+1), code, types, c.PreferredInstructor)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.Out, tbl)

	_, _ = fmt.Fprintf(pp.Out, "%s %s\n", bold.Sprint("Buffer:"), p.BufferTime)

	days := uitable.New()
	days.Separator = "  "
	for _, d := range p.DailyAvailability {
		times := make([]string, 0, len(d.AvailableTimes))
		for _, t := range d.AvailableTimes {
			times = append(times, string(t))
		}
		if len(times) == 0 {
			times = append(times, faint.Sprint("unavailable"))
		}
		days.AddRow(string(d.Day), strings.Join(times, ", "), fmt.Sprintf("max %d", d.MaxClassesPerDay))
	}
	_, _ = fmt.Fprintln(pp.Out, days)
	pp.NewLine()
}
