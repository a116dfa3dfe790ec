// Package submit sends the current term's preferences to the optimizer and
// stores the resulting schedule.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/optimizer"
)

var (
	ErrNoCourses          = errors.New("submit: no course codes entered")
	ErrIncompleteCourses  = errors.New("submit: some courses have no code")
	ErrBusy               = errors.New("submit: a schedule is already being generated")
	ErrServiceUnavailable = errors.New("submit: optimizer unavailable")
)

// InvalidCoursesError lists the codes the optimizer did not recognise.
type InvalidCoursesError struct {
	Codes   []string
	Message string
}

func (e *InvalidCoursesError) Error() string {
	return "submit: invalid courses: " + strings.Join(e.Codes, ", ")
}

// Optimizer is the pair of calls a submission makes. *optimizer.Client
// satisfies it.
type Optimizer interface {
	Validate(ctx context.Context, term course.Term, courses []course.CoursePreference) (*optimizer.ValidateResponse, error)
	Generate(ctx context.Context, term course.Term, prefs course.TermPreferences) (*optimizer.GenerateResponse, error)
}

// Pipeline runs submissions against one app.State. Only one submission runs
// at a time; a second is refused with ErrBusy.
type Pipeline struct {
	State     *app.State
	Optimizer Optimizer
	Logger    *zap.Logger

	generating atomic.Bool
}

// New creates a pipeline.
func New(state *app.State, opt Optimizer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{State: state, Optimizer: opt, Logger: logger}
}

// IsGenerating reports whether a submission is in flight.
func (p *Pipeline) IsGenerating() bool {
	return p.generating.Load()
}

// Check applies the input guards without touching the network.
func Check(prefs course.TermPreferences) error {
	filled := 0
	for _, c := range prefs.Courses {
		if strings.TrimSpace(c.CourseCode) != "" {
			filled++
		}
	}
	switch {
	case filled == 0:
		return ErrNoCourses
	case filled < len(prefs.Courses):
		return ErrIncompleteCourses
	}
	return nil
}

// Submit validates and generates a schedule for the term that is current
// when it is called. The result is stored for that term even if the user
// switches terms while the request is in flight. On any error the stored
// results are left as they were.
func (p *Pipeline) Submit(ctx context.Context) (*optimizer.GenerateResponse, error) {
	if !p.generating.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.generating.Store(false)

	snap := p.State.Snapshot()
	logger := p.logger().With(zap.String("term", string(snap.Term)))

	if err := Check(snap.Preferences); err != nil {
		return nil, err
	}

	logger.Debug("validating courses", zap.Strings("codes", snap.Preferences.Codes()))
	v, err := p.Optimizer.Validate(ctx, snap.Term, snap.Preferences.Courses)
	if err != nil {
		logger.Error("course validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: validate: %w", ErrServiceUnavailable, err)
	}
	if len(v.InvalidCourses) > 0 {
		return nil, &InvalidCoursesError{Codes: v.InvalidCourses, Message: v.Message}
	}

	logger.Debug("generating schedule")
	g, err := p.Optimizer.Generate(ctx, snap.Term, snap.Preferences)
	if err != nil {
		logger.Error("schedule generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: generate: %w", ErrServiceUnavailable, err)
	}

	p.State.SetSchedule(snap.Term, g.Courses, g.Alternatives, g.Demo, g.Message)
	logger.Info("schedule generated",
		zap.Int("courses", len(g.Courses)),
		zap.Int("alternatives", len(g.Alternatives)),
		zap.Bool("demo", g.Demo),
	)
	return g, nil
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// UserMessage turns a pipeline error into the one line shown to the user.
// Service detail is never included.
func UserMessage(err error) string {
	var invalid *InvalidCoursesError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoCourses):
		return "Please enter at least one course code."
	case errors.Is(err, ErrIncompleteCourses):
		return "Please finish or remove the courses without a code."
	case errors.Is(err, ErrBusy):
		return "A schedule is already being generated."
	case errors.As(err, &invalid):
		if len(invalid.Codes) == 1 {
			return fmt.Sprintf("Course %s was not found for this term.", invalid.Codes[0])
		}
		return fmt.Sprintf("Courses not found for this term: %s.", strings.Join(invalid.Codes, ", "))
	case errors.Is(err, context.Canceled):
		return "Schedule generation was cancelled."
	}
	return "Unable to generate schedule. Please try again later."
}
