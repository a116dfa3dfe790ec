package timeutil

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultWindow is the visible calendar range used when none is configured.
	DefaultWindow = "8:00 AM-9:00 PM"
)

var (
	windowPattern = regexp.MustCompile(`(?i)^\s*(\d{1,2}(?::\d{2})?\s*[ap]m)\s*-\s*(\d{1,2}(?::\d{2})?\s*[ap]m)\s*$`)
	clockPattern  = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*([ap]m)$`)
)

// Window is the visible part of the day, in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// ParseWindow parses "8:00 AM-9:00 PM" (minutes optional, "8am-9pm" works too).
// Unlike ParseClock it is strict: configuration errors should be reported.
func ParseWindow(input string) (Window, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		trimmed = DefaultWindow
	}

	matches := windowPattern.FindStringSubmatch(trimmed)
	if len(matches) != 3 {
		return Window{}, fmt.Errorf("invalid window %q", trimmed)
	}
	start, err := parseStrict(matches[1])
	if err != nil {
		return Window{}, err
	}
	end, err := parseStrict(matches[2])
	if err != nil {
		return Window{}, err
	}

	w := Window{Start: start.Minutes(), End: end.Minutes()}
	if w.End <= w.Start {
		return Window{}, fmt.Errorf("window %q must end after it starts", trimmed)
	}
	return w, nil
}

// MustParseWindow is ParseWindow for constants.
func MustParseWindow(input string) Window {
	w, err := ParseWindow(input)
	if err != nil {
		panic(err)
	}
	return w
}

func parseStrict(s string) (Clock, error) {
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	m := clockPattern.FindStringSubmatch(compact)
	if len(m) != 4 {
		return Clock{}, fmt.Errorf("invalid time %q", s)
	}
	minute := "00"
	if m[2] != "" {
		minute = m[2]
	}
	hour := atoiOrZero(m[1])
	if hour < 1 || hour > 12 {
		return Clock{}, fmt.Errorf("invalid hour in %q", s)
	}
	if atoiOrZero(minute) > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", s)
	}
	return ParseClock(fmt.Sprintf("%d:%s %s", hour, minute, m[3])), nil
}

// Span is the window length in minutes.
func (w Window) Span() int {
	return w.End - w.Start
}

// Clamp bounds m to the window.
func (w Window) Clamp(m int) int {
	if m < w.Start {
		return w.Start
	}
	if m > w.End {
		return w.End
	}
	return m
}

// Hours lists the whole hours that start inside the window, for axis labels.
func (w Window) Hours() []Clock {
	var out []Clock
	first := (w.Start + 59) / 60
	for h := first; h*60 < w.End; h++ {
		out = append(out, Clock{Hour: h})
	}
	return out
}

// FormatWindow renders a window the way ParseWindow reads it.
func FormatWindow(w Window) string {
	return FromMinutes(w.Start).Format12() + "-" + FromMinutes(w.End).Format12()
}
