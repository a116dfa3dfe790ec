// Package mcp provides the Model Context Protocol server integration for termwise.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/prefs"
	"tableflip.dev/termwise/pkg/results"
	"tableflip.dev/termwise/pkg/submit"
	"tableflip.dev/termwise/pkg/timeutil"
)

var (
	// ErrCourseLimit is returned when a term already holds the maximum number of courses.
	ErrCourseLimit = fmt.Errorf("a term holds at most %d courses", course.MaxCourses)
	// ErrLastCourse is returned when removing the only course of a term.
	ErrLastCourse = errors.New("at least one course is required")
	// ErrNoPipeline is returned by Generate when no optimizer is configured.
	ErrNoPipeline = errors.New("schedule generation is not configured")
)

// Service adapts app.State to the shapes exposed over MCP.
type Service struct {
	State    *app.State
	Pipeline *submit.Pipeline
	Engine   *layout.Engine
	Labels   map[course.Term]string
}

// PreferencesDTO is one term's preferences.
type PreferencesDTO struct {
	Term        course.Term            `json:"term"`
	Label       string                 `json:"label"`
	Current     bool                   `json:"current"`
	Preferences course.TermPreferences `json:"preferences"`
}

// ScheduleDTO is the schedule on screen for a term.
type ScheduleDTO struct {
	Term         course.Term              `json:"term"`
	Label        string                   `json:"label"`
	Generated    bool                     `json:"generated"`
	Position     string                   `json:"position"`
	Current      int                      `json:"currentAlternative"`
	Alternatives int                      `json:"alternativeCount"`
	IsDemo       bool                     `json:"isDemo"`
	Message      string                   `json:"message,omitempty"`
	Courses      []course.ScheduledCourse `json:"courses"`
}

// CellDTO is a laid-out session.
type CellDTO struct {
	Key           string  `json:"key"`
	CourseCode    string  `json:"courseCode"`
	Title         string  `json:"title,omitempty"`
	Day           string  `json:"day"`
	Start         string  `json:"start"`
	End           string  `json:"end"`
	TopPercent    float64 `json:"topPercent"`
	HeightPercent float64 `json:"heightPercent"`
	Size          string  `json:"size"`
	Color         string  `json:"color"`
	Label         string  `json:"label,omitempty"`
	TimeLabel     string  `json:"timeLabel,omitempty"`
	Required      bool    `json:"required"`
}

// CalendarDTO is the weekly grid for a term.
type CalendarDTO struct {
	Term    course.Term `json:"term"`
	Window  string      `json:"window"`
	Columns []string    `json:"columns"`
	Cells   []CellDTO   `json:"cells"`
}

// NewService builds a service. A nil engine uses the default layout.
func NewService(state *app.State, pipeline *submit.Pipeline, engine *layout.Engine, labels map[course.Term]string) *Service {
	if engine == nil {
		engine = layout.New(layout.DefaultConfig())
	}
	return &Service{State: state, Pipeline: pipeline, Engine: engine, Labels: labels}
}

func (s *Service) label(t course.Term) string {
	if l := s.Labels[t]; l != "" {
		return l
	}
	return t.Title()
}

// resolveTerm maps "" to the selected term.
func (s *Service) resolveTerm(raw string) (course.Term, error) {
	if strings.TrimSpace(raw) == "" {
		return s.State.Term(), nil
	}
	return course.ParseTerm(raw)
}

// GetPreferences returns the preferences of term, or of the selected term.
func (s *Service) GetPreferences(_ context.Context, term string) (PreferencesDTO, error) {
	t, err := s.resolveTerm(term)
	if err != nil {
		return PreferencesDTO{}, err
	}
	return PreferencesDTO{
		Term:        t,
		Label:       s.label(t),
		Current:     t == s.State.Term(),
		Preferences: s.State.PreferencesFor(t),
	}, nil
}

func (s *Service) current(ctx context.Context) PreferencesDTO {
	dto, _ := s.GetPreferences(ctx, "")
	return dto
}

// CourseUpdate carries the fields to change on a course; nil leaves a field alone.
type CourseUpdate struct {
	Code         *string
	Instructor   *string
	SectionTypes []string
	SetTypes     bool
}

// AddCourse appends a course to the selected term and applies u to it.
func (s *Service) AddCourse(ctx context.Context, u CourseUpdate) (PreferencesDTO, error) {
	types, err := parseSectionTypes(u.SectionTypes)
	if err != nil {
		return PreferencesDTO{}, err
	}
	added := false
	s.State.Edit(func(p *prefs.Store) {
		if added = p.AddCourse(); added {
			applyCourse(p, len(p.Preferences().Courses)-1, u, types)
		}
	})
	if !added {
		return PreferencesDTO{}, ErrCourseLimit
	}
	return s.current(ctx), nil
}

// UpdateCourse changes course number index (1-based) of the selected term.
func (s *Service) UpdateCourse(ctx context.Context, index int, u CourseUpdate) (PreferencesDTO, error) {
	i, err := s.courseIndex(index)
	if err != nil {
		return PreferencesDTO{}, err
	}
	types, err := parseSectionTypes(u.SectionTypes)
	if err != nil {
		return PreferencesDTO{}, err
	}
	s.State.Edit(func(p *prefs.Store) { applyCourse(p, i, u, types) })
	return s.current(ctx), nil
}

// RemoveCourse removes course number index (1-based) from the selected term.
func (s *Service) RemoveCourse(ctx context.Context, index int) (PreferencesDTO, error) {
	i, err := s.courseIndex(index)
	if err != nil {
		return PreferencesDTO{}, err
	}
	removed := false
	s.State.Edit(func(p *prefs.Store) { removed = p.RemoveCourse(i) })
	if !removed {
		return PreferencesDTO{}, ErrLastCourse
	}
	return s.current(ctx), nil
}

func (s *Service) courseIndex(index int) (int, error) {
	n := len(s.State.Snapshot().Preferences.Courses)
	if index < 1 || index > n {
		return 0, fmt.Errorf("course %d does not exist (the term has %d)", index, n)
	}
	return index - 1, nil
}

func applyCourse(p *prefs.Store, i int, u CourseUpdate, types []course.SectionType) {
	if u.Code != nil {
		p.UpdateCourseCode(i, *u.Code)
	}
	if u.Instructor != nil {
		p.UpdatePreferredInstructor(i, *u.Instructor)
	}
	if u.SetTypes {
		p.UpdateSectionTypes(i, types)
	}
}

func parseSectionTypes(raw []string) ([]course.SectionType, error) {
	out := make([]course.SectionType, 0, len(raw))
	for _, r := range raw {
		st, err := course.ParseSectionType(r)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// SetBufferTime sets the selected term's buffer preference.
func (s *Service) SetBufferTime(ctx context.Context, value string) (PreferencesDTO, error) {
	b, err := course.ParseBufferTime(value)
	if err != nil {
		return PreferencesDTO{}, err
	}
	s.State.Edit(func(p *prefs.Store) { p.UpdateBufferTime(b) })
	return s.current(ctx), nil
}

// SetAvailability replaces the time-of-day buckets for a weekday.
func (s *Service) SetAvailability(ctx context.Context, day string, times []string) (PreferencesDTO, error) {
	d, err := course.ParseWeekDay(day)
	if err != nil {
		return PreferencesDTO{}, err
	}
	buckets := make([]course.TimeOfDay, 0, len(times))
	for _, raw := range times {
		t, err := course.ParseTimeOfDay(raw)
		if err != nil {
			return PreferencesDTO{}, err
		}
		buckets = append(buckets, t)
	}
	s.State.Edit(func(p *prefs.Store) { p.UpdateDayAvailability(d, buckets) })
	return s.current(ctx), nil
}

// SetMaxClasses sets the class cap for a weekday.
func (s *Service) SetMaxClasses(ctx context.Context, day string, n int) (PreferencesDTO, error) {
	d, err := course.ParseWeekDay(day)
	if err != nil {
		return PreferencesDTO{}, err
	}
	if n < 0 || n > course.MaxClassesPerDayLimit {
		return PreferencesDTO{}, fmt.Errorf("max classes must be between 0 and %d", course.MaxClassesPerDayLimit)
	}
	s.State.Edit(func(p *prefs.Store) { p.UpdateMaxClassesPerDay(d, n) })
	return s.current(ctx), nil
}

// ResetPreferences restores the selected term and clears its schedule.
func (s *Service) ResetPreferences(ctx context.Context) PreferencesDTO {
	s.State.Edit(func(p *prefs.Store) { p.ResetPreferences() })
	return s.current(ctx)
}

// ResetAvailability restores buffer and availability and clears the schedule.
func (s *Service) ResetAvailability(ctx context.Context) PreferencesDTO {
	s.State.Edit(func(p *prefs.Store) { p.ResetAvailabilityPreferences() })
	return s.current(ctx)
}

// SwitchTerm selects a term.
func (s *Service) SwitchTerm(ctx context.Context, term string) (PreferencesDTO, error) {
	t, err := course.ParseTerm(term)
	if err != nil {
		return PreferencesDTO{}, err
	}
	s.State.Edit(func(p *prefs.Store) { p.SwitchSemester(t) })
	return s.current(ctx), nil
}

// Generate submits the selected term. Errors carry user-facing text.
func (s *Service) Generate(ctx context.Context) (ScheduleDTO, error) {
	if s.Pipeline == nil {
		return ScheduleDTO{}, ErrNoPipeline
	}
	term := s.State.Term()
	if _, err := s.Pipeline.Submit(ctx); err != nil {
		return ScheduleDTO{}, errors.New(submit.UserMessage(err))
	}
	return s.schedule(term, s.State.Result(term)), nil
}

// NextAlternative advances the selected term's schedule.
func (s *Service) NextAlternative(_ context.Context) ScheduleDTO {
	r := s.State.NextAlternative()
	return s.schedule(s.State.Term(), r)
}

// PreviousAlternative moves the selected term's schedule back.
func (s *Service) PreviousAlternative(_ context.Context) ScheduleDTO {
	r := s.State.PreviousAlternative()
	return s.schedule(s.State.Term(), r)
}

// GetSchedule returns the displayed schedule of term, or of the selected term.
func (s *Service) GetSchedule(_ context.Context, term string) (ScheduleDTO, error) {
	t, err := s.resolveTerm(term)
	if err != nil {
		return ScheduleDTO{}, err
	}
	return s.schedule(t, s.State.Result(t)), nil
}

func (s *Service) schedule(t course.Term, r results.TermResult) ScheduleDTO {
	courses := r.Displayed()
	if courses == nil {
		courses = []course.ScheduledCourse{}
	}
	return ScheduleDTO{
		Term:         t,
		Label:        s.label(t),
		Generated:    !r.Empty(),
		Position:     r.Position(),
		Current:      r.Current,
		Alternatives: len(r.Alternatives),
		IsDemo:       r.IsDemo,
		Message:      r.Message,
		Courses:      courses,
	}
}

// GetCalendar lays out the displayed schedule of term.
func (s *Service) GetCalendar(_ context.Context, term string) (CalendarDTO, error) {
	t, err := s.resolveTerm(term)
	if err != nil {
		return CalendarDTO{}, err
	}
	cells := s.Engine.Layout(s.State.Result(t).Displayed())
	out := CalendarDTO{
		Term:    t,
		Window:  timeutil.FormatWindow(s.Engine.Config().Window),
		Columns: s.Engine.Columns(),
		Cells:   make([]CellDTO, 0, len(cells)),
	}
	for _, c := range cells {
		out.Cells = append(out.Cells, CellDTO{
			Key:           c.Key,
			CourseCode:    c.CourseCode,
			Title:         c.DisplayTitle,
			Day:           c.Day,
			Start:         c.Start.Format12(),
			End:           c.End.Format12(),
			TopPercent:    c.TopPercent,
			HeightPercent: c.HeightPercent,
			Size:          c.Size.String(),
			Color:         c.Color.CSS(),
			Label:         c.Label,
			TimeLabel:     c.TimeLabel,
			Required:      c.Required,
		})
	}
	return out, nil
}
