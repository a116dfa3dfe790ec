package timeutil

import (
	"fmt"
	"strings"
)

// WeekStart selects which weekday occupies the first calendar column.
type WeekStart int

const (
	// MondayFirst lays the week out Monday..Sunday.
	MondayFirst WeekStart = iota
	// SundayFirst lays the week out Sunday..Saturday.
	SundayFirst
)

var mondayFirst = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseWeekStart accepts "monday" or "sunday".
func ParseWeekStart(s string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday", "mon":
		return MondayFirst, nil
	case "sunday", "sun":
		return SundayFirst, nil
	default:
		return MondayFirst, fmt.Errorf("unsupported week start %q (expected monday or sunday)", s)
	}
}

func (w WeekStart) String() string {
	if w == SundayFirst {
		return "sunday"
	}
	return "monday"
}

// Days returns the weekday names in column order.
func (w WeekStart) Days() []string {
	days := make([]string, 0, 7)
	if w == SundayFirst {
		days = append(days, mondayFirst[6])
		return append(days, mondayFirst[:6]...)
	}
	return append(days, mondayFirst...)
}

// DayIndex maps a weekday name to its grid column. Matching ignores case and
// surrounding space; unknown names report false.
func DayIndex(name string, start WeekStart) (int, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, d := range mondayFirst {
		if strings.ToLower(d) != n {
			continue
		}
		if start == SundayFirst {
			return (i + 1) % 7, true
		}
		return i, true
	}
	return 0, false
}
