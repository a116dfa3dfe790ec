// Package prefs holds the per-term scheduling preferences. Every operation is
// available as a pure function over course.TermPreferences; Store applies
// them to the current term.
package prefs

import (
	"tableflip.dev/termwise/pkg/course"
)

// AddCourse appends a blank course unless the term already has the maximum.
func AddCourse(p course.TermPreferences) course.TermPreferences {
	if len(p.Courses) >= course.MaxCourses {
		return p
	}
	out := p.Clone()
	out.Courses = append(out.Courses, course.CoursePreference{SectionTypes: []course.SectionType{}})
	return out
}

// RemoveCourse drops the course at i. The last remaining course is kept.
func RemoveCourse(p course.TermPreferences, i int) course.TermPreferences {
	if len(p.Courses) <= 1 || i < 0 || i >= len(p.Courses) {
		return p
	}
	out := p.Clone()
	out.Courses = append(out.Courses[:i], out.Courses[i+1:]...)
	return out
}

// UpdateCourseCode stores the normalized code for course i.
func UpdateCourseCode(p course.TermPreferences, i int, raw string) course.TermPreferences {
	return updateCourse(p, i, func(c *course.CoursePreference) {
		c.CourseCode = course.NormalizeCode(raw)
	})
}

// UpdatePreferredInstructor stores the sanitized instructor for course i.
func UpdatePreferredInstructor(p course.TermPreferences, i int, raw string) course.TermPreferences {
	return updateCourse(p, i, func(c *course.CoursePreference) {
		c.PreferredInstructor = course.NormalizeInstructor(raw)
	})
}

// UpdateSectionTypes replaces the accepted section types of course i.
func UpdateSectionTypes(p course.TermPreferences, i int, types []course.SectionType) course.TermPreferences {
	return updateCourse(p, i, func(c *course.CoursePreference) {
		c.SectionTypes = course.NormalizeSectionTypes(types)
	})
}

func updateCourse(p course.TermPreferences, i int, fn func(*course.CoursePreference)) course.TermPreferences {
	if i < 0 || i >= len(p.Courses) {
		return p
	}
	out := p.Clone()
	fn(&out.Courses[i])
	return out
}

// UpdateBufferTime replaces the buffer preference.
func UpdateBufferTime(p course.TermPreferences, b course.BufferTime) course.TermPreferences {
	out := p.Clone()
	out.BufferTime = b
	return out
}

// UpdateDayAvailability replaces the buckets for day. Clearing every bucket
// drops the class cap to zero; opening a bucket on a zero-cap day restores the
// default cap.
func UpdateDayAvailability(p course.TermPreferences, day course.WeekDay, times []course.TimeOfDay) course.TermPreferences {
	return updateDay(p, day, func(d *course.DailyAvailability) {
		d.AvailableTimes = course.NormalizeTimes(times)
		switch {
		case len(d.AvailableTimes) == 0:
			d.MaxClassesPerDay = 0
		case d.MaxClassesPerDay == 0:
			d.MaxClassesPerDay = course.DefaultMaxClassesPerDay
		}
	})
}

// UpdateMaxClassesPerDay sets the class cap for day, clamped to 0..5. A zero
// cap empties the buckets; a positive cap on an empty day reopens all of them.
func UpdateMaxClassesPerDay(p course.TermPreferences, day course.WeekDay, n int) course.TermPreferences {
	if n < 0 {
		n = 0
	}
	if n > course.MaxClassesPerDayLimit {
		n = course.MaxClassesPerDayLimit
	}
	return updateDay(p, day, func(d *course.DailyAvailability) {
		d.MaxClassesPerDay = n
		switch {
		case n == 0:
			d.AvailableTimes = []course.TimeOfDay{}
		case len(d.AvailableTimes) == 0:
			d.AvailableTimes = course.AllTimesOfDay()
		}
	})
}

func updateDay(p course.TermPreferences, day course.WeekDay, fn func(*course.DailyAvailability)) course.TermPreferences {
	out := p.Clone()
	for i := range out.DailyAvailability {
		if out.DailyAvailability[i].Day == day {
			fn(&out.DailyAvailability[i])
			return out
		}
	}
	return p
}

// ResetAvailability restores the buffer and every day to defaults, keeping
// the courses.
func ResetAvailability(p course.TermPreferences) course.TermPreferences {
	out := p.Clone()
	def := course.DefaultPreferences()
	out.BufferTime = def.BufferTime
	out.DailyAvailability = def.DailyAvailability
	return out
}

// Consistent reports whether every day satisfies the bucket/cap invariant.
func Consistent(p course.TermPreferences) bool {
	for _, d := range p.DailyAvailability {
		if (len(d.AvailableTimes) == 0) != (d.MaxClassesPerDay == 0) {
			return false
		}
	}
	return true
}
