package layout

import (
	"math"
	"testing"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/timeutil"
)

func session(day, start, end string) course.SessionInterval {
	return course.SessionInterval{Day: day, Start: start, End: end}
}

func TestLayoutPercentages(t *testing.T) {
	e := New(DefaultConfig())
	cells := e.Layout([]course.ScheduledCourse{{
		CourseCode: "COMP1405",
		Title:      "Intro",
		Times:      []course.SessionInterval{session("Monday", "10:00 AM", "11:30 AM")},
	}})
	if len(cells) != 1 {
		t.Fatalf("expected one cell, got %d", len(cells))
	}
	c := cells[0]
	span := 13.0 * 60
	if math.Abs(c.TopPercent-120/span*100) > 1e-9 {
		t.Fatalf("unexpected top %f", c.TopPercent)
	}
	if math.Abs(c.HeightPercent-90/span*100) > 1e-9 {
		t.Fatalf("unexpected height %f", c.HeightPercent)
	}
	if c.Size != SizeNormal || c.TimeLabel != "10:00 AM - 11:30 AM" {
		t.Fatalf("unexpected size/time label: %v %q", c.Size, c.TimeLabel)
	}
	if c.Key != "COMP1405-Monday-10:00 AM" {
		t.Fatalf("unexpected key %q", c.Key)
	}
	if !c.Shadow {
		t.Fatalf("cells should ask for a text shadow")
	}
}

func TestLayoutInsideWindowStaysInBounds(t *testing.T) {
	e := New(DefaultConfig())
	w := e.Config().Window
	for start := w.Start; start < w.End; start += 25 {
		for dur := 5; start+dur <= w.End; dur += 55 {
			s := timeutil.FromMinutes(start).Format12()
			en := timeutil.FromMinutes(start + dur).Format12()
			cells := e.Layout([]course.ScheduledCourse{{CourseCode: "X1", Times: []course.SessionInterval{session("Tuesday", s, en)}}})
			if len(cells) != 1 {
				t.Fatalf("session %s-%s dropped", s, en)
			}
			c := cells[0]
			if c.TopPercent < 0 || c.TopPercent+c.HeightPercent > 100+1e-9 {
				t.Fatalf("session %s-%s out of bounds: top %f height %f", s, en, c.TopPercent, c.HeightPercent)
			}
		}
	}
}

func TestLayoutClampsAndDrops(t *testing.T) {
	e := New(DefaultConfig())
	cells := e.Layout([]course.ScheduledCourse{{
		CourseCode: "LATE1000",
		Times: []course.SessionInterval{
			session("Monday", "7:00 AM", "9:00 AM"),
			session("Tuesday", "8:30 PM", "10:00 PM"),
			session("Wednesday", "9:30 PM", "10:30 PM"),
			session("Funday", "10:00 AM", "11:00 AM"),
		},
	}})
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].TopPercent != 0 {
		t.Fatalf("early session should clamp to top, got %f", cells[0].TopPercent)
	}
	if got := cells[1].TopPercent + cells[1].HeightPercent; math.Abs(got-100) > 1e-9 {
		t.Fatalf("late session should clamp to bottom, got %f", got)
	}
	// Clamped to 30 minutes but the raw session is 90.
	if cells[1].Size != SizeShort || cells[1].TimeLabel == "" {
		t.Fatalf("unexpected late cell %+v", cells[1])
	}
}

func TestLayoutVeryShortSuppressesLabel(t *testing.T) {
	e := New(DefaultConfig())
	cells := e.Layout([]course.ScheduledCourse{
		{CourseCode: "COMP1405", Title: "Intro", Times: []course.SessionInterval{session("Monday", "8:30 AM", "9:20 AM")}},
		{CourseCode: "COMP1405T1", Title: "Tutorial", IsRequiredSession: true, RequiredFor: "COMP1405",
			Times: []course.SessionInterval{
				session("Tuesday", "1:00 PM", "1:25 PM"),
				session("Thursday", "1:00 PM", "1:50 PM"),
			}},
	})
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	lecture, short, longer := cells[0], cells[1], cells[2]
	if lecture.Label != "" || lecture.Size != SizeShort || lecture.TimeLabel != "" {
		t.Fatalf("unexpected lecture cell %+v", lecture)
	}
	if short.Size != SizeVeryShort || short.Label != "" {
		t.Fatalf("very short session must not carry a label: %+v", short)
	}
	if longer.Label != RequiredLabel {
		t.Fatalf("expected tutorial label, got %q", longer.Label)
	}
	if longer.DisplayTitle != "Intro" || longer.Title != "Tutorial" {
		t.Fatalf("required session should display its parent title, got %q", longer.DisplayTitle)
	}
	if longer.Color.Base != lecture.Color.Base || longer.Color.Alpha == lecture.Color.Alpha {
		t.Fatalf("tutorial should share hue at reduced opacity")
	}
}

func TestLayoutSundayFirstWithoutWeekend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WeekStart = timeutil.SundayFirst
	cfg.Weekend = false
	e := New(cfg)
	if cols := e.Columns(); len(cols) != 5 || cols[0] != "Monday" {
		t.Fatalf("unexpected columns %v", cols)
	}
	cells := e.Layout([]course.ScheduledCourse{{CourseCode: "A1", Times: []course.SessionInterval{
		session("Sunday", "10:00 AM", "11:00 AM"),
		session("Friday", "10:00 AM", "11:00 AM"),
	}}})
	if len(cells) != 1 || cells[0].Column != 4 {
		t.Fatalf("expected only the friday cell in column 4, got %+v", cells)
	}

	cfg.Weekend = true
	e = New(cfg)
	if col, ok := e.Column("sunday"); !ok || col != 0 {
		t.Fatalf("sunday should be column 0, got %d %v", col, ok)
	}
}

func TestLayoutEndToEndTwoSessions(t *testing.T) {
	e := New(DefaultConfig())
	cells := e.Layout([]course.ScheduledCourse{{
		CourseCode: "COMP1405",
		Times: []course.SessionInterval{
			session("Monday", "8:30 AM", "9:20 AM"),
			session("Wednesday", "8:30 AM", "9:20 AM"),
		},
	}})
	if len(cells) != 2 {
		t.Fatalf("expected two cells, got %d", len(cells))
	}
	a, b := cells[0], cells[1]
	if a.Day != "Monday" || b.Day != "Wednesday" {
		t.Fatalf("unexpected days %s %s", a.Day, b.Day)
	}
	if a.TopPercent != b.TopPercent || a.HeightPercent != b.HeightPercent {
		t.Fatalf("cells should share geometry")
	}
	if a.Color != b.Color {
		t.Fatalf("cells should share colour")
	}
}
