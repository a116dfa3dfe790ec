// Package course holds the preference and schedule types exchanged with the
// optimizer, together with their wire encodings.
package course

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// MaxCourses is the most course preferences a term may hold.
	MaxCourses = 7
	// DefaultMaxClassesPerDay is applied to fresh and restored availability.
	DefaultMaxClassesPerDay = 3
	// MaxClassesPerDayLimit bounds the per-day class count.
	MaxClassesPerDayLimit = 5
)

// Term selects one of the two academic scheduling periods.
type Term string

const (
	Fall   Term = "fall"
	Winter Term = "winter"
)

// Terms lists every term in display order.
func Terms() []Term {
	return []Term{Fall, Winter}
}

// ParseTerm accepts "fall" or "winter" in any case.
func ParseTerm(s string) (Term, error) {
	switch Term(strings.ToLower(strings.TrimSpace(s))) {
	case Fall:
		return Fall, nil
	case Winter:
		return Winter, nil
	}
	return "", fmt.Errorf("invalid term %q (expected fall or winter)", s)
}

// Valid reports whether t is one of the two known terms.
func (t Term) Valid() bool {
	return t == Fall || t == Winter
}

// Other returns the opposite term.
func (t Term) Other() Term {
	if t == Fall {
		return Winter
	}
	return Fall
}

// Title is the capitalized term name.
func (t Term) Title() string {
	switch t {
	case Fall:
		return "Fall"
	case Winter:
		return "Winter"
	}
	return string(t)
}

// WeekDay is a day that availability preferences can target.
type WeekDay string

const (
	Monday    WeekDay = "Monday"
	Tuesday   WeekDay = "Tuesday"
	Wednesday WeekDay = "Wednesday"
	Thursday  WeekDay = "Thursday"
	Friday    WeekDay = "Friday"
)

// WeekDays returns Monday..Friday.
func WeekDays() []WeekDay {
	return []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// ParseWeekDay accepts full or three-letter day names in any case.
func ParseWeekDay(s string) (WeekDay, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for _, d := range WeekDays() {
		full := strings.ToLower(string(d))
		if n == full || (len(n) >= 3 && strings.HasPrefix(full, n)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid weekday %q", s)
}

// TimeOfDay is a coarse availability bucket.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
	Evening   TimeOfDay = "Evening"
)

// AllTimesOfDay returns the full bucket set in canonical order.
func AllTimesOfDay() []TimeOfDay {
	return []TimeOfDay{Morning, Afternoon, Evening}
}

// ParseTimeOfDay accepts bucket names in any case.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllTimesOfDay() {
		if n == strings.ToLower(string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q (expected morning, afternoon or evening)", s)
}

// SectionType is a delivery mode a student will accept.
type SectionType string

const (
	Online   SectionType = "Online"
	Hybrid   SectionType = "Hybrid"
	InPerson SectionType = "In-Person"
)

// SectionTypes returns every section type.
func SectionTypes() []SectionType {
	return []SectionType{Online, Hybrid, InPerson}
}

// ParseSectionType accepts "online", "hybrid", "in-person" or "inperson".
func ParseSectionType(s string) (SectionType, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.ReplaceAll(n, " ", "-")
	switch n {
	case "online":
		return Online, nil
	case "hybrid":
		return Hybrid, nil
	case "in-person", "inperson":
		return InPerson, nil
	}
	return "", fmt.Errorf("invalid section type %q (expected online, hybrid or in-person)", s)
}

// BufferTime is the preferred gap between consecutive classes.
type BufferTime int

const (
	NoPreference BufferTime = iota
	ThirtyMinutes
	OneHour
	MoreThanOneHour
)

var bufferWire = map[BufferTime]string{
	NoPreference:    "No Buffer",
	ThirtyMinutes:   "30 Minutes",
	OneHour:         "1 Hour",
	MoreThanOneHour: "1+ Hours",
}

// bufferAliases covers the short forms the optimizer also accepts.
var bufferAliases = map[string]BufferTime{
	"no buffer":     NoPreference,
	"no preference": NoPreference,
	"none":          NoPreference,
	"30 minutes":    ThirtyMinutes,
	"30m":           ThirtyMinutes,
	"1 hour":        OneHour,
	"1h":            OneHour,
	"1+ hours":      MoreThanOneHour,
	"1h+":           MoreThanOneHour,
}

// ParseBufferTime accepts the wire strings and their short aliases.
func ParseBufferTime(s string) (BufferTime, error) {
	if b, ok := bufferAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b, nil
	}
	return NoPreference, fmt.Errorf("invalid buffer time: %s", s)
}

// String returns the wire value.
func (b BufferTime) String() string {
	if s, ok := bufferWire[b]; ok {
		return s
	}
	return bufferWire[NoPreference]
}

func (b BufferTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BufferTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseBufferTime(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func (b BufferTime) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// CoursePreference is one course the student wants scheduled.
type CoursePreference struct {
	CourseCode          string        `json:"courseCode" yaml:"courseCode"`
	PreferredInstructor string        `json:"preferredInstructor" yaml:"preferredInstructor,omitempty"`
	SectionTypes        []SectionType `json:"sectionTypes" yaml:"sectionTypes,omitempty"`
}

// DailyAvailability constrains one weekday.
type DailyAvailability struct {
	Day              WeekDay     `json:"day" yaml:"day"`
	AvailableTimes   []TimeOfDay `json:"availableTimes" yaml:"availableTimes"`
	MaxClassesPerDay int         `json:"maxClassesPerDay" yaml:"maxClassesPerDay"`
}

// Has reports whether the bucket is in the available set.
func (d DailyAvailability) Has(t TimeOfDay) bool {
	for _, v := range d.AvailableTimes {
		if v == t {
			return true
		}
	}
	return false
}

// TermPreferences is everything the optimizer needs for one term.
type TermPreferences struct {
	Courses           []CoursePreference  `json:"courses" yaml:"courses"`
	BufferTime        BufferTime          `json:"bufferTime" yaml:"bufferTime"`
	DailyAvailability []DailyAvailability `json:"dailyAvailability" yaml:"dailyAvailability"`
}

// DefaultAvailability is every weekday fully open with the default class cap.
func DefaultAvailability() []DailyAvailability {
	days := WeekDays()
	out := make([]DailyAvailability, 0, len(days))
	for _, d := range days {
		out = append(out, DailyAvailability{
			Day:              d,
			AvailableTimes:   AllTimesOfDay(),
			MaxClassesPerDay: DefaultMaxClassesPerDay,
		})
	}
	return out
}

// DefaultPreferences is a single blank course with no constraints.
func DefaultPreferences() TermPreferences {
	return TermPreferences{
		Courses:           []CoursePreference{{SectionTypes: []SectionType{}}},
		BufferTime:        NoPreference,
		DailyAvailability: DefaultAvailability(),
	}
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (p TermPreferences) Clone() TermPreferences {
	out := TermPreferences{BufferTime: p.BufferTime}
	out.Courses = make([]CoursePreference, len(p.Courses))
	for i, c := range p.Courses {
		c.SectionTypes = append([]SectionType{}, c.SectionTypes...)
		out.Courses[i] = c
	}
	out.DailyAvailability = make([]DailyAvailability, len(p.DailyAvailability))
	for i, d := range p.DailyAvailability {
		d.AvailableTimes = append([]TimeOfDay{}, d.AvailableTimes...)
		out.DailyAvailability[i] = d
	}
	return out
}

// Codes returns the non-empty course codes in order.
func (p TermPreferences) Codes() []string {
	var codes []string
	for _, c := range p.Courses {
		if code := strings.TrimSpace(c.CourseCode); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// SessionInterval is one weekly meeting as sent by the optimizer. Times stay
// as strings; the layout engine parses them leniently.
type SessionInterval struct {
	Day       string `json:"day" yaml:"day"`
	Start     string `json:"start" yaml:"start"`
	End       string `json:"end" yaml:"end"`
	TimeOfDay string `json:"timeOfDay" yaml:"timeOfDay"`
}

// ScheduledCourse is a section placed by the optimizer. Required sessions
// (tutorials, labs) name their lecture through RequiredFor.
type ScheduledCourse struct {
	CourseCode        string            `json:"courseCode" yaml:"courseCode"`
	Title             string            `json:"title" yaml:"title"`
	Instructor        string            `json:"instructor" yaml:"instructor"`
	SectionType       string            `json:"sectionType" yaml:"sectionType"`
	Times             []SessionInterval `json:"times" yaml:"times"`
	IsRequiredSession bool              `json:"isRequiredSession,omitempty" yaml:"isRequiredSession,omitempty"`
	RequiredFor       string            `json:"requiredFor,omitempty" yaml:"requiredFor,omitempty"`
	MatchReason       string            `json:"matchReason,omitempty" yaml:"matchReason,omitempty"`
}

// ColorKey is the identifier a course is coloured by.
func (c ScheduledCourse) ColorKey() string {
	if c.IsRequiredSession && c.RequiredFor != "" {
		return c.RequiredFor
	}
	return c.CourseCode
}
