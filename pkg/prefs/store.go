package prefs

import (
	"tableflip.dev/termwise/pkg/course"
)

// ResultClearer drops a term's generated schedule. Resetting preferences
// must not leave a stale schedule on screen.
type ResultClearer interface {
	Clear(term course.Term)
}

// Store keeps both terms' preferences and which one is current. It is not
// safe for concurrent use; callers serialize access.
type Store struct {
	current course.Term
	terms   map[course.Term]course.TermPreferences
	results ResultClearer
}

// NewStore starts both terms at defaults with Fall selected. results may be
// nil.
func NewStore(results ResultClearer) *Store {
	s := &Store{
		current: course.Fall,
		terms:   make(map[course.Term]course.TermPreferences, 2),
		results: results,
	}
	for _, t := range course.Terms() {
		s.terms[t] = course.DefaultPreferences()
	}
	return s
}

// Current is the selected term.
func (s *Store) Current() course.Term {
	return s.current
}

// Preferences returns a copy of the current term's preferences.
func (s *Store) Preferences() course.TermPreferences {
	return s.For(s.current)
}

// For returns a copy of a term's preferences.
func (s *Store) For(term course.Term) course.TermPreferences {
	return s.terms[term].Clone()
}

func (s *Store) apply(fn func(course.TermPreferences) course.TermPreferences) {
	s.terms[s.current] = fn(s.terms[s.current])
}

// AddCourse appends a blank course; it reports false when the term is full.
func (s *Store) AddCourse() bool {
	before := len(s.terms[s.current].Courses)
	s.apply(AddCourse)
	return len(s.terms[s.current].Courses) > before
}

// RemoveCourse removes course i; it reports false for the last course or a
// bad index.
func (s *Store) RemoveCourse(i int) bool {
	before := len(s.terms[s.current].Courses)
	s.apply(func(p course.TermPreferences) course.TermPreferences { return RemoveCourse(p, i) })
	return len(s.terms[s.current].Courses) < before
}

// UpdateCourseCode sets course i's code, normalized to uppercase alphanumerics.
func (s *Store) UpdateCourseCode(i int, raw string) {
	s.apply(func(p course.TermPreferences) course.TermPreferences { return UpdateCourseCode(p, i, raw) })
}

// UpdatePreferredInstructor sets course i's instructor after filtering it.
func (s *Store) UpdatePreferredInstructor(i int, raw string) {
	s.apply(func(p course.TermPreferences) course.TermPreferences { return UpdatePreferredInstructor(p, i, raw) })
}

// UpdateSectionTypes replaces the allowed section types for course i.
func (s *Store) UpdateSectionTypes(i int, types []course.SectionType) {
	s.apply(func(p course.TermPreferences) course.TermPreferences { return UpdateSectionTypes(p, i, types) })
}

// UpdateBufferTime sets the gap wanted between classes.
func (s *Store) UpdateBufferTime(b course.BufferTime) {
	s.apply(func(p course.TermPreferences) course.TermPreferences { return UpdateBufferTime(p, b) })
}

// UpdateDayAvailability sets the open buckets for day; no buckets also sets
// its maximum to zero.
func (s *Store) UpdateDayAvailability(day course.WeekDay, times []course.TimeOfDay) {
	s.apply(func(p course.TermPreferences) course.TermPreferences { return UpdateDayAvailability(p, day, times) })
}

// UpdateMaxClassesPerDay sets day's maximum; zero closes the day and raising
// it from a closed day reopens every bucket.
func (s *Store) UpdateMaxClassesPerDay(day course.WeekDay, n int) {
	s.apply(func(p course.TermPreferences) course.TermPreferences { return UpdateMaxClassesPerDay(p, day, n) })
}

// ResetAvailabilityPreferences restores buffer and availability for the
// current term and clears its schedule.
func (s *Store) ResetAvailabilityPreferences() {
	s.apply(ResetAvailability)
	s.clearResults()
}

// ResetPreferences restores the whole current term and clears its schedule.
func (s *Store) ResetPreferences() {
	s.terms[s.current] = course.DefaultPreferences()
	s.clearResults()
}

func (s *Store) clearResults() {
	if s.results != nil {
		s.results.Clear(s.current)
	}
}

// SwitchSemester selects term without touching either term's state. Unknown
// terms are ignored.
func (s *Store) SwitchSemester(term course.Term) {
	if term.Valid() {
		s.current = term
	}
}
