package teaui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/export"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/prefs"
)

// execute runs one command line.
func (m *Model) execute(line string) tea.Cmd {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "q", "quit", "exit":
		m.cancel()
		return tea.Quit
	case "help", "?":
		m.mode = modeHelp
	case "add":
		m.addCourse()
	case "rm", "remove":
		m.removeCourse(args)
	case "code":
		m.editCourse(args, "code", func(p *prefs.Store, i int, v string) { p.UpdateCourseCode(i, v) })
	case "instructor":
		m.editCourse(args, "instructor", func(p *prefs.Store, i int, v string) { p.UpdatePreferredInstructor(i, v) })
	case "types":
		m.setSectionTypes(args)
	case "buffer":
		m.setBuffer(args)
	case "avail":
		m.setAvailability(args)
	case "max":
		m.setMax(args)
	case "term":
		if len(args) != 1 {
			m.setError("Usage: term fall|winter")
			return nil
		}
		t, err := course.ParseTerm(args[0])
		if err != nil {
			m.setError(err.Error())
			return nil
		}
		m.switchTerm(t)
	case "reset":
		m.state.Edit(func(p *prefs.Store) { p.ResetPreferences() })
		m.focus = ""
		m.setStatus("Preferences reset.")
	case "reset-avail":
		m.state.Edit(func(p *prefs.Store) { p.ResetAvailabilityPreferences() })
		m.focus = ""
		m.setStatus("Availability reset.")
	case "generate", "gen":
		return m.generate()
	case "next":
		m.state.NextAlternative()
		m.focus = ""
	case "prev", "previous":
		m.state.PreviousAlternative()
		m.focus = ""
	case "export":
		m.export(args)
	default:
		m.setError(fmt.Sprintf("Unknown command %q. Type help for a list.", name))
	}
	return nil
}

func (m *Model) addCourse() {
	added := false
	m.state.Edit(func(p *prefs.Store) { added = p.AddCourse() })
	if !added {
		m.setError(fmt.Sprintf("At most %d courses per term.", course.MaxCourses))
		return
	}
	n := len(m.state.Snapshot().Preferences.Courses)
	m.setStatus(fmt.Sprintf("Added course %d. Set it with: code %d CODE", n, n))
}

func (m *Model) removeCourse(args []string) {
	if len(args) != 1 {
		m.setError("Usage: rm N")
		return
	}
	i, ok := m.courseIndex(args[0])
	if !ok {
		return
	}
	removed := false
	m.state.Edit(func(p *prefs.Store) { removed = p.RemoveCourse(i) })
	if !removed {
		m.setError("At least one course is required.")
		return
	}
	m.setStatus(fmt.Sprintf("Removed course %d.", i+1))
}

func (m *Model) editCourse(args []string, what string, fn func(p *prefs.Store, i int, v string)) {
	if len(args) < 1 {
		m.setError(fmt.Sprintf("Usage: %s N VALUE", what))
		return
	}
	i, ok := m.courseIndex(args[0])
	if !ok {
		return
	}
	value := strings.Join(args[1:], " ")
	m.state.Edit(func(p *prefs.Store) { fn(p, i, value) })
	m.setStatus(fmt.Sprintf("Updated course %d.", i+1))
}

func (m *Model) setSectionTypes(args []string) {
	if len(args) < 1 {
		m.setError("Usage: types N online,hybrid,in-person")
		return
	}
	i, ok := m.courseIndex(args[0])
	if !ok {
		return
	}
	var types []course.SectionType
	for _, raw := range splitList(args[1:]) {
		if raw == "any" {
			types = nil
			break
		}
		st, err := course.ParseSectionType(raw)
		if err != nil {
			m.setError(err.Error())
			return
		}
		types = append(types, st)
	}
	m.state.Edit(func(p *prefs.Store) { p.UpdateSectionTypes(i, types) })
	m.setStatus(fmt.Sprintf("Updated course %d.", i+1))
}

func (m *Model) setBuffer(args []string) {
	b, err := course.ParseBufferTime(strings.Join(args, " "))
	if err != nil {
		m.setError("Usage: buffer none|30m|1h|1h+")
		return
	}
	m.state.Edit(func(p *prefs.Store) { p.UpdateBufferTime(b) })
	m.setStatus("Buffer time: " + b.String() + ".")
}

func (m *Model) setAvailability(args []string) {
	if len(args) < 1 {
		m.setError("Usage: avail DAY morning,afternoon,evening|none")
		return
	}
	day, err := course.ParseWeekDay(args[0])
	if err != nil {
		m.setError(err.Error())
		return
	}
	times := []course.TimeOfDay{}
	for _, raw := range splitList(args[1:]) {
		if raw == "none" {
			times = times[:0]
			break
		}
		t, err := course.ParseTimeOfDay(raw)
		if err != nil {
			m.setError(err.Error())
			return
		}
		times = append(times, t)
	}
	m.state.Edit(func(p *prefs.Store) { p.UpdateDayAvailability(day, times) })
	m.setStatus(fmt.Sprintf("Updated %s.", day))
}

func (m *Model) setMax(args []string) {
	if len(args) != 2 {
		m.setError("Usage: max DAY N")
		return
	}
	day, err := course.ParseWeekDay(args[0])
	if err != nil {
		m.setError(err.Error())
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 || n > course.MaxClassesPerDayLimit {
		m.setError(fmt.Sprintf("Max classes must be between 0 and %d.", course.MaxClassesPerDayLimit))
		return
	}
	m.state.Edit(func(p *prefs.Store) { p.UpdateMaxClassesPerDay(day, n) })
	m.setStatus(fmt.Sprintf("Updated %s.", day))
}

func (m *Model) export(args []string) {
	if len(args) != 1 {
		m.setError("Usage: export FILE.xlsx|FILE.ics")
		return
	}
	snap := m.state.Snapshot()
	term, ok := m.terms[snap.Term]
	if !ok {
		term = export.Term{Label: snap.Term.Title()}
	}
	if term.Label == "" {
		term.Label = snap.Term.Title()
	}
	if err := export.WriteFile(args[0], m.engine, term, snap.Result.Displayed(), m.now()); err != nil {
		m.logger.Debug("export failed", zap.String("path", args[0]), zap.Error(err))
		m.setError(err.Error())
		return
	}
	m.setStatus("Exported to " + args[0] + ".")
}

// courseIndex parses a 1-based course number for the current term.
func (m *Model) courseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	count := len(m.state.Snapshot().Preferences.Courses)
	if err != nil || n < 1 || n > count {
		m.setError(fmt.Sprintf("No course %s; there are %d.", s, count))
		return 0, false
	}
	return n - 1, true
}

// splitList accepts "a,b c" style lists.
func splitList(args []string) []string {
	var out []string
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// cells lays out the schedule currently on screen.
func (m *Model) cells() []layout.Cell {
	snap := m.state.Snapshot()
	return m.engine.Layout(snap.Result.Displayed())
}
