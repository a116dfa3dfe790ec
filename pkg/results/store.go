// Package results keeps the schedules generated for each term and which
// alternative is on screen.
package results

import (
	"errors"
	"fmt"

	"tableflip.dev/termwise/pkg/course"
)

// Primary marks the optimizer's main recommendation as current.
const Primary = -1

// ErrAlternativeOutOfRange is returned when selecting an alternative that does
// not exist. The store is left unchanged.
var ErrAlternativeOutOfRange = errors.New("results: alternative out of range")

// TermResult is the latest generated schedule for a term.
type TermResult struct {
	Generated    []course.ScheduledCourse   `json:"generatedSchedule" yaml:"generatedSchedule"`
	Alternatives [][]course.ScheduledCourse `json:"alternativeSchedules,omitempty" yaml:"alternativeSchedules,omitempty"`
	// Current is Primary or an index into Alternatives.
	Current int    `json:"currentAlternative" yaml:"currentAlternative"`
	IsDemo  bool   `json:"isDemo" yaml:"isDemo"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Empty reports whether nothing has been generated.
func (r TermResult) Empty() bool {
	return r.Generated == nil
}

// Displayed is the schedule currently on screen.
func (r TermResult) Displayed() []course.ScheduledCourse {
	if r.Current >= 0 && r.Current < len(r.Alternatives) {
		return r.Alternatives[r.Current]
	}
	return r.Generated
}

// Position describes the current view, e.g. "Alternative 2 of 3".
func (r TermResult) Position() string {
	if r.Current == Primary || r.Current >= len(r.Alternatives) {
		return "Primary"
	}
	return fmt.Sprintf("Alternative %d of %d", r.Current+1, len(r.Alternatives))
}

func emptyResult() TermResult {
	return TermResult{Current: Primary}
}

// Store holds one TermResult per term. It is not safe for concurrent use.
type Store struct {
	terms map[course.Term]TermResult
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{terms: make(map[course.Term]TermResult, 2)}
	for _, t := range course.Terms() {
		s.terms[t] = emptyResult()
	}
	return s
}

// Get returns the term's result.
func (s *Store) Get(term course.Term) TermResult {
	r, ok := s.terms[term]
	if !ok {
		return emptyResult()
	}
	return r
}

// SetSchedule replaces the term's result; the primary schedule becomes
// current.
func (s *Store) SetSchedule(term course.Term, primary []course.ScheduledCourse, alternatives [][]course.ScheduledCourse, isDemo bool, message string) {
	if primary == nil {
		primary = []course.ScheduledCourse{}
	}
	s.terms[term] = TermResult{
		Generated:    primary,
		Alternatives: alternatives,
		Current:      Primary,
		IsDemo:       isDemo,
		Message:      message,
	}
}

// Clear drops the term's result.
func (s *Store) Clear(term course.Term) {
	s.terms[term] = emptyResult()
}

// SetCurrentAlternative selects Primary or an alternative index.
func (s *Store) SetCurrentAlternative(term course.Term, index int) error {
	r := s.Get(term)
	if index != Primary && (index < 0 || index >= len(r.Alternatives)) {
		return fmt.Errorf("%w: %d of %d", ErrAlternativeOutOfRange, index, len(r.Alternatives))
	}
	r.Current = index
	s.terms[term] = r
	return nil
}

// Current returns the schedule on screen, or nil when none was generated.
func (s *Store) Current(term course.Term) []course.ScheduledCourse {
	return s.Get(term).Displayed()
}

// Next advances circularly through primary then each alternative. It does
// nothing when there are no alternatives.
func (s *Store) Next(term course.Term) {
	s.step(term, 1)
}

// Previous moves circularly backwards; from primary it lands on the last
// alternative.
func (s *Store) Previous(term course.Term) {
	s.step(term, -1)
}

func (s *Store) step(term course.Term, delta int) {
	r := s.Get(term)
	n := len(r.Alternatives)
	if n == 0 {
		return
	}
	// Position 0 is primary, 1..n the alternatives.
	pos := r.Current + 1
	pos = ((pos+delta)%(n+1) + n + 1) % (n + 1)
	r.Current = pos - 1
	s.terms[term] = r
}
