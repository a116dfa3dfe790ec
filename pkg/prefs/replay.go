package prefs

import (
	"tableflip.dev/termwise/pkg/course"
)

// Replay resets the current term and rebuilds want through the store's own
// operations, so imported preferences are normalized and capped exactly as
// interactive edits would be.
func Replay(s *Store, want course.TermPreferences) {
	s.ResetPreferences()

	for i, c := range want.Courses {
		if i > 0 && !s.AddCourse() {
			break
		}
		s.UpdateCourseCode(i, c.CourseCode)
		s.UpdatePreferredInstructor(i, c.PreferredInstructor)
		s.UpdateSectionTypes(i, c.SectionTypes)
	}

	s.UpdateBufferTime(want.BufferTime)
	for _, d := range want.DailyAvailability {
		s.UpdateDayAvailability(d.Day, d.AvailableTimes)
		s.UpdateMaxClassesPerDay(d.Day, d.MaxClassesPerDay)
	}
}
