// Package timeutil parses the 12-hour clock strings used by course listings and
// maps weekday names onto calendar columns.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes between midnight and midnight.
const MinutesPerDay = 24 * 60

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "H:MM AM" style strings. It never fails: fields that are
// missing, malformed or out of range fall back to zero so that noisy upstream
// data still renders.
func ParseClock(text string) Clock {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return Clock{}
	}

	hm := strings.SplitN(fields[0], ":", 2)
	hour := atoiOrZero(hm[0])
	minute := 0
	if len(hm) == 2 {
		minute = atoiOrZero(hm[1])
	}
	if minute < 0 || minute > 59 {
		minute = 0
	}

	meridiem := ""
	if len(fields) > 1 {
		meridiem = strings.ToUpper(fields[1])
	}
	switch meridiem {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}
	if hour < 0 || hour > 23 {
		hour = 0
	}
	return Clock{Hour: hour, Minute: minute}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// FromMinutes builds a Clock from minutes since midnight, wrapping at 24h.
func FromMinutes(m int) Clock {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return Clock{Hour: m / 60, Minute: m % 60}
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is strictly earlier than o.
func (c Clock) Before(o Clock) bool {
	return c.Minutes() < o.Minutes()
}

// Sub returns c - o in minutes.
func (c Clock) Sub(o Clock) int {
	return c.Minutes() - o.Minutes()
}

// Format12 renders the clock as "8:30 AM".
func (c Clock) Format12() string {
	h := c.Hour % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if c.Hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, c.Minute, suffix)
}

// String implements fmt.Stringer.
func (c Clock) String() string {
	return c.Format12()
}

// FormatRange renders "8:30 AM - 9:20 AM".
func FormatRange(start, end Clock) string {
	return start.Format12() + " - " + end.Format12()
}
