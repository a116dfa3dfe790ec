package prefs

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"tableflip.dev/termwise/pkg/course"
)

// fileCourse and fileDay accept names in any case; they are parsed into the
// canonical values before use.
type fileCourse struct {
	Code         string   `yaml:"code"`
	Instructor   string   `yaml:"instructor"`
	SectionTypes []string `yaml:"sectionTypes"`
}

type fileDay struct {
	Times []string `yaml:"times"`
	Max   *int     `yaml:"max"`
}

type file struct {
	Term         string             `yaml:"term"`
	Courses      []fileCourse       `yaml:"courses"`
	Buffer       string             `yaml:"buffer"`
	Availability map[string]fileDay `yaml:"availability"`
}

// Decode reads a preferences document:
//
//	term: fall
//	courses:
//	  - code: COMP1405
//	    sectionTypes: [online]
//	buffer: 1h
//	availability:
//	  friday: {times: [morning], max: 2}
//
// Days left out keep the default availability. The term is empty when the
// document does not name one.
func Decode(r io.Reader) (course.Term, course.TermPreferences, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return "", course.TermPreferences{}, fmt.Errorf("prefs: decode: %w", err)
	}

	var term course.Term
	if f.Term != "" {
		t, err := course.ParseTerm(f.Term)
		if err != nil {
			return "", course.TermPreferences{}, fmt.Errorf("prefs: %w", err)
		}
		term = t
	}

	out := course.DefaultPreferences()
	if len(f.Courses) > 0 {
		out.Courses = make([]course.CoursePreference, 0, len(f.Courses))
	}
	for _, c := range f.Courses {
		types := make([]course.SectionType, 0, len(c.SectionTypes))
		for _, raw := range c.SectionTypes {
			st, err := course.ParseSectionType(raw)
			if err != nil {
				return "", course.TermPreferences{}, fmt.Errorf("prefs: course %s: %w", c.Code, err)
			}
			types = append(types, st)
		}
		out.Courses = append(out.Courses, course.CoursePreference{
			CourseCode:          c.Code,
			PreferredInstructor: c.Instructor,
			SectionTypes:        types,
		})
	}

	if f.Buffer != "" {
		b, err := course.ParseBufferTime(f.Buffer)
		if err != nil {
			return "", course.TermPreferences{}, fmt.Errorf("prefs: %w", err)
		}
		out.BufferTime = b
	}

	for name, d := range f.Availability {
		day, err := course.ParseWeekDay(name)
		if err != nil {
			return "", course.TermPreferences{}, fmt.Errorf("prefs: %w", err)
		}
		times := make([]course.TimeOfDay, 0, len(d.Times))
		for _, raw := range d.Times {
			t, err := course.ParseTimeOfDay(raw)
			if err != nil {
				return "", course.TermPreferences{}, fmt.Errorf("prefs: %s: %w", day, err)
			}
			times = append(times, t)
		}
		for i := range out.DailyAvailability {
			if out.DailyAvailability[i].Day != day {
				continue
			}
			if d.Times != nil {
				out.DailyAvailability[i].AvailableTimes = times
			}
			if d.Max != nil {
				out.DailyAvailability[i].MaxClassesPerDay = *d.Max
			}
		}
	}
	return term, out, nil
}

// ReadFile decodes the preferences document at path.
func ReadFile(path string) (course.Term, course.TermPreferences, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", course.TermPreferences{}, fmt.Errorf("prefs: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}
