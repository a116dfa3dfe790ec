// Package app is the composition root shared by the TUI, the CLI runners and
// the MCP server. It owns both stores and serializes access to them.
package app

import (
	"sync"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/prefs"
	"tableflip.dev/termwise/pkg/results"
)

// State owns the preference and result stores.
type State struct {
	mu      sync.Mutex
	prefs   *prefs.Store
	results *results.Store
}

// New creates a State with default preferences for both terms. Resetting
// preferences clears the matching results.
func New() *State {
	r := results.NewStore()
	return &State{
		prefs:   prefs.NewStore(r),
		results: r,
	}
}

// Snapshot is a consistent copy of the current term's state.
type Snapshot struct {
	Term        course.Term
	Preferences course.TermPreferences
	Result      results.TermResult
}

// Snapshot returns the current term's preferences and result.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.prefs.Current()
	return Snapshot{
		Term:        t,
		Preferences: s.prefs.Preferences(),
		Result:      s.results.Get(t),
	}
}

// Term returns the selected term.
func (s *State) Term() course.Term {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Current()
}

// Result returns a term's result.
func (s *State) Result(term course.Term) results.TermResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.Get(term)
}

// PreferencesFor returns a term's preferences.
func (s *State) PreferencesFor(term course.Term) course.TermPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.For(term)
}

// Update runs fn with exclusive access to both stores.
func (s *State) Update(fn func(p *prefs.Store, r *results.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.prefs, s.results)
}

// Edit runs fn against the preference store.
func (s *State) Edit(fn func(p *prefs.Store)) {
	s.Update(func(p *prefs.Store, _ *results.Store) { fn(p) })
}

// SetSchedule stores a freshly generated result for term.
func (s *State) SetSchedule(term course.Term, primary []course.ScheduledCourse, alternatives [][]course.ScheduledCourse, isDemo bool, message string) {
	s.Update(func(_ *prefs.Store, r *results.Store) {
		r.SetSchedule(term, primary, alternatives, isDemo, message)
	})
}

// NextAlternative moves the current term forward through its alternatives.
func (s *State) NextAlternative() results.TermResult {
	var out results.TermResult
	s.Update(func(p *prefs.Store, r *results.Store) {
		r.Next(p.Current())
		out = r.Get(p.Current())
	})
	return out
}

// PreviousAlternative moves the current term backwards.
func (s *State) PreviousAlternative() results.TermResult {
	var out results.TermResult
	s.Update(func(p *prefs.Store, r *results.Store) {
		r.Previous(p.Current())
		out = r.Get(p.Current())
	})
	return out
}

// SelectAlternative picks an alternative (or results.Primary) for the
// current term.
func (s *State) SelectAlternative(index int) error {
	var err error
	s.Update(func(p *prefs.Store, r *results.Store) {
		err = r.SetCurrentAlternative(p.Current(), index)
	})
	return err
}
