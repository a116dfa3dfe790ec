package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/timeutil"
)

// Term anchors recurring events in real dates.
type Term struct {
	Label string
	Start time.Time
	Weeks int
}

// ICS writes one weekly recurring event per session. The first occurrence
// is the first matching weekday on or after term.Start. Sessions on unknown
// days or with an end before their start are skipped.
func ICS(w io.Writer, courses []course.ScheduledCourse, term Term, now time.Time) error {
	if len(courses) == 0 {
		return ErrEmptySchedule
	}
	if term.Start.IsZero() {
		return fmt.Errorf("export: term start date required")
	}
	weeks := term.Weeks
	if weeks <= 0 {
		weeks = 1
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//termwise//schedule//EN")
	if term.Label != "" {
		cal.SetName(term.Label)
	}

	parents := make(map[string]string, len(courses))
	for _, c := range courses {
		if !c.IsRequiredSession {
			parents[c.CourseCode] = c.Title
		}
	}

	added := 0
	for _, c := range courses {
		for _, s := range c.Times {
			idx, ok := timeutil.DayIndex(s.Day, timeutil.MondayFirst)
			if !ok {
				continue
			}
			start := timeutil.ParseClock(s.Start)
			end := timeutil.ParseClock(s.End)
			if !start.Before(end) {
				continue
			}

			day := firstOnOrAfter(term.Start, time.Weekday((idx+1)%7))
			dtStart := at(day, start)
			dtEnd := at(day, end)

			uid := fmt.Sprintf("%s-%s-%02d%02d@termwise", c.CourseCode, strings.ToLower(s.Day), start.Hour, start.Minute)
			event := cal.AddEvent(uid)
			event.SetDtStampTime(now)
			event.SetStartAt(dtStart)
			event.SetEndAt(dtEnd)
			event.SetSummary(summary(c, parents))
			event.SetDescription(description(c))
			event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", weeks))
			added++
		}
	}
	if added == 0 {
		return ErrEmptySchedule
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("export: write ics: %w", err)
	}
	return nil
}

func summary(c course.ScheduledCourse, parents map[string]string) string {
	title := c.Title
	if c.IsRequiredSession {
		if p := parents[c.RequiredFor]; p != "" {
			title = p
		}
	}
	if title == "" {
		return c.CourseCode
	}
	return c.CourseCode + " " + title
}

func description(c course.ScheduledCourse) string {
	var lines []string
	if c.SectionType != "" {
		st := c.SectionType
		if c.IsRequiredSession {
			st += " (" + layout.RequiredLabel + ")"
		}
		lines = append(lines, st)
	}
	if c.Instructor != "" {
		lines = append(lines, "Instructor: "+c.Instructor)
	}
	if c.IsRequiredSession && c.RequiredFor != "" {
		lines = append(lines, "Associated with: "+c.RequiredFor)
	}
	return strings.Join(lines, "\n")
}

func firstOnOrAfter(t time.Time, wd time.Weekday) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(wd) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

func at(day time.Time, c timeutil.Clock) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}
