// Package layout places scheduled sessions on a weekly grid. Positions are
// percentages of the visible window so any renderer can scale them.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/palette"
	"tableflip.dev/termwise/pkg/timeutil"
)

// RequiredLabel is the secondary label shown on tutorial and lab cells.
const RequiredLabel = "Tutorial/Lab"

// Size classifies a cell by its visible duration.
type Size int

const (
	// SizeNormal is an hour or longer.
	SizeNormal Size = iota
	// SizeShort is under an hour and uses the small font.
	SizeShort
	// SizeVeryShort is under 30 minutes and drops the secondary label.
	SizeVeryShort
)

func (s Size) String() string {
	switch s {
	case SizeShort:
		return "short"
	case SizeVeryShort:
		return "very-short"
	}
	return "normal"
}

// Small reports whether the cell uses the reduced font.
func (s Size) Small() bool {
	return s != SizeNormal
}

func classify(minutes int) Size {
	switch {
	case minutes < 30:
		return SizeVeryShort
	case minutes < 60:
		return SizeShort
	}
	return SizeNormal
}

// Config sets the grid geometry.
type Config struct {
	Window    timeutil.Window
	WeekStart timeutil.WeekStart
	Weekend   bool
}

// DefaultConfig shows Monday..Sunday from 8 AM to 9 PM.
func DefaultConfig() Config {
	return Config{
		Window:    timeutil.MustParseWindow(timeutil.DefaultWindow),
		WeekStart: timeutil.MondayFirst,
		Weekend:   true,
	}
}

// Cell is one session ready to draw.
type Cell struct {
	Key string

	CourseCode   string
	Title        string
	DisplayTitle string
	Instructor   string
	SectionType  string
	Required     bool
	RequiredFor  string

	Day    string
	Column int
	Start  timeutil.Clock
	End    timeutil.Clock

	TopPercent    float64
	HeightPercent float64
	Size          Size

	Color palette.Color
	// Label is RequiredLabel or empty; it is never set on very short cells.
	Label string
	// TimeLabel is the 12-hour range, set only for sessions of an hour or more.
	TimeLabel string
	// Shadow asks the renderer for a drop shadow behind the text. Cells
	// never carry a border.
	Shadow bool
}

// Engine lays out schedules for a fixed configuration.
type Engine struct {
	cfg     Config
	columns []string
	// colOf maps DayIndex results onto visible columns, -1 when hidden.
	colOf [7]int
}

// New builds an Engine. A zero window falls back to the default.
func New(cfg Config) *Engine {
	if cfg.Window.Span() <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	e := &Engine{cfg: cfg}
	for i := range e.colOf {
		e.colOf[i] = -1
	}
	for i, d := range cfg.WeekStart.Days() {
		if !cfg.Weekend && (d == "Saturday" || d == "Sunday") {
			continue
		}
		e.colOf[i] = len(e.columns)
		e.columns = append(e.columns, d)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Columns lists the visible day names in column order.
func (e *Engine) Columns() []string {
	return append([]string(nil), e.columns...)
}

// Column resolves a day name to a visible column.
func (e *Engine) Column(day string) (int, bool) {
	idx, ok := timeutil.DayIndex(day, e.cfg.WeekStart)
	if !ok {
		return 0, false
	}
	col := e.colOf[idx]
	return col, col >= 0
}

// Layout converts a schedule into cells ordered by column then start time.
// Sessions on unknown or hidden days and sessions entirely outside the
// window are dropped.
func (e *Engine) Layout(courses []course.ScheduledCourse) []Cell {
	titles := make(map[string]string, len(courses))
	for _, c := range courses {
		if !c.IsRequiredSession {
			titles[c.CourseCode] = c.Title
		}
	}

	w := e.cfg.Window
	span := float64(w.Span())

	cells := make([]Cell, 0, len(courses)*2)
	for _, c := range courses {
		color := palette.ForCourse(c)
		display := c.Title
		if c.IsRequiredSession {
			if parent, ok := titles[c.RequiredFor]; ok && parent != "" {
				display = parent
			}
		}

		for _, s := range c.Times {
			col, ok := e.Column(s.Day)
			if !ok {
				continue
			}
			start := timeutil.ParseClock(s.Start)
			end := timeutil.ParseClock(s.End)

			cs := w.Clamp(start.Minutes())
			ce := w.Clamp(end.Minutes())
			if cs >= ce {
				continue
			}

			size := classify(ce - cs)
			cell := Cell{
				Key:           fmt.Sprintf("%s-%s-%s", c.CourseCode, s.Day, s.Start),
				CourseCode:    c.CourseCode,
				Title:         c.Title,
				DisplayTitle:  display,
				Instructor:    c.Instructor,
				SectionType:   c.SectionType,
				Required:      c.IsRequiredSession,
				RequiredFor:   c.RequiredFor,
				Day:           e.columns[col],
				Column:        col,
				Start:         start,
				End:           end,
				TopPercent:    float64(cs-w.Start) / span * 100,
				HeightPercent: float64(ce-cs) / span * 100,
				Size:          size,
				Color:         color,
				Shadow:        true,
			}
			if c.IsRequiredSession && size != SizeVeryShort {
				cell.Label = RequiredLabel
			}
			if end.Sub(start) >= 60 {
				cell.TimeLabel = timeutil.FormatRange(start, end)
			}
			cells = append(cells, cell)
		}
	}

	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].Column != cells[j].Column {
			return cells[i].Column < cells[j].Column
		}
		return cells[i].TopPercent < cells[j].TopPercent
	})
	return cells
}

// Find returns the index of the cell with key, or -1.
func Find(cells []Cell, key string) int {
	for i, c := range cells {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Describe is a one-line summary used by plain-text outputs.
func (c Cell) Describe() string {
	parts := []string{c.CourseCode, c.Day, timeutil.FormatRange(c.Start, c.End)}
	if c.Label != "" {
		parts = append(parts, c.Label)
	}
	return strings.Join(parts, " ")
}
