package course

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"comp 1405", "COMP1405"},
		{"math-1007a", "MATH1007A"},
		{"  phys*9999!! ", "PHYS9999"},
		{"abcdefghijklmnopqrstuvwxyz", "ABCDEFGHIJKLMNO"},
		{"été", "T"},
	}
	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeInstructor(t *testing.T) {
	if got := NormalizeInstructor("Dr. Jean-Luc O'Neil #42"); got != "Dr. Jean-Luc O'Neil " {
		t.Fatalf("unexpected instructor %q", got)
	}
	long := strings.Repeat("é", 50)
	if got := []rune(NormalizeInstructor(long)); len(got) != 35 {
		t.Fatalf("expected 35 runes, got %d", len(got))
	}
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if len(p.Courses) != 1 || p.Courses[0].CourseCode != "" {
		t.Fatalf("expected one empty course, got %+v", p.Courses)
	}
	if p.BufferTime != NoPreference {
		t.Fatalf("expected no buffer, got %v", p.BufferTime)
	}
	if len(p.DailyAvailability) != 5 {
		t.Fatalf("expected five weekdays, got %d", len(p.DailyAvailability))
	}
	for _, d := range p.DailyAvailability {
		if len(d.AvailableTimes) != 3 || d.MaxClassesPerDay != DefaultMaxClassesPerDay {
			t.Fatalf("unexpected default availability %+v", d)
		}
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	p := DefaultPreferences()
	c := p.Clone()
	c.DailyAvailability[0].AvailableTimes[0] = Evening
	c.Courses[0].CourseCode = "X"
	if p.DailyAvailability[0].AvailableTimes[0] != Morning || p.Courses[0].CourseCode != "" {
		t.Fatalf("clone aliased original")
	}
}

func TestPreferencesWireFormat(t *testing.T) {
	p := DefaultPreferences()
	p.Courses[0] = CoursePreference{CourseCode: "COMP1405", SectionTypes: []SectionType{InPerson}}
	p.BufferTime = MoreThanOneHour
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"bufferTime":"1+ Hours"`, `"sectionTypes":["In-Person"]`, `"day":"Monday"`, `"maxClassesPerDay":3`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}

	var back TermPreferences
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.BufferTime != MoreThanOneHour {
		t.Fatalf("buffer lost in round trip: %v", back.BufferTime)
	}
}

func TestParseBufferTimeAliases(t *testing.T) {
	tests := map[string]BufferTime{
		"No Buffer":     NoPreference,
		"No preference": NoPreference,
		"30m":           ThirtyMinutes,
		"1 Hour":        OneHour,
		"1h+":           MoreThanOneHour,
	}
	for in, want := range tests {
		got, err := ParseBufferTime(in)
		if err != nil || got != want {
			t.Errorf("ParseBufferTime(%q) = %v, %v want %v", in, got, err, want)
		}
	}
	if _, err := ParseBufferTime("2 days"); err == nil || err.Error() != "invalid buffer time: 2 days" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseHelpers(t *testing.T) {
	if d, err := ParseWeekDay("wed"); err != nil || d != Wednesday {
		t.Fatalf("ParseWeekDay(wed) = %v, %v", d, err)
	}
	if _, err := ParseWeekDay("Saturday"); err == nil {
		t.Fatalf("saturday must not be a preference day")
	}
	if st, err := ParseSectionType("in person"); err != nil || st != InPerson {
		t.Fatalf("ParseSectionType = %v, %v", st, err)
	}
	if term, err := ParseTerm("WINTER"); err != nil || term != Winter {
		t.Fatalf("ParseTerm = %v, %v", term, err)
	}
	if _, err := ParseTerm("summer"); err == nil {
		t.Fatalf("summer must be rejected")
	}
}

func TestDecodeScheduleFlattensRequiredSessions(t *testing.T) {
	payload := `[
	  {"courseCode":"COMP1405","title":"Intro","instructor":"A","sectionType":"In-Person",
	   "times":[{"day":"Monday","start":"8:30 AM","end":"9:20 AM","timeOfDay":"Morning"}],
	   "requiredSessions":[{"crn":"1","courseCode":"COMP1405A1","title":"Intro Tut","instructor":"TA",
	     "sectionType":"In-Person","times":[{"day":"Friday","start":"1:00 PM","end":"1:50 PM","timeOfDay":"Afternoon"}],
	     "location":"HP","isRequired":true}]},
	  {"courseCode":"MATH1007","title":"Calc","instructor":"B","sectionType":"Online","times":[]}
	]`
	got, err := DecodeSchedule(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 courses, got %d", len(got))
	}
	tut := got[2]
	if !tut.IsRequiredSession || tut.RequiredFor != "COMP1405" || tut.CourseCode != "COMP1405A1" {
		t.Fatalf("unexpected flattened session %+v", tut)
	}
	if tut.ColorKey() != "COMP1405" {
		t.Fatalf("required session should colour by parent, got %s", tut.ColorKey())
	}
}

func TestDecodeAlternativesNull(t *testing.T) {
	got, err := DecodeAlternatives(json.RawMessage("null"))
	if err != nil || got != nil {
		t.Fatalf("expected nil, got %v, %v", got, err)
	}
}
