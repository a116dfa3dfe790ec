package generate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/optimizer"
	"tableflip.dev/termwise/pkg/prefs"
	"tableflip.dev/termwise/pkg/printers"
	"tableflip.dev/termwise/pkg/submit"
)

type fakeOptimizer struct {
	invalid []string
	resp    *optimizer.GenerateResponse
	err     error
}

func (f *fakeOptimizer) Validate(context.Context, course.Term, []course.CoursePreference) (*optimizer.ValidateResponse, error) {
	return &optimizer.ValidateResponse{InvalidCourses: f.invalid}, nil
}

func (f *fakeOptimizer) Generate(context.Context, course.Term, course.TermPreferences) (*optimizer.GenerateResponse, error) {
	return f.resp, f.err
}

func sampleResponse() *optimizer.GenerateResponse {
	lecture := course.ScheduledCourse{
		CourseCode:  "COMP1405A",
		Title:       "Introduction to Computer Science I",
		Instructor:  "Ada Lovelace",
		SectionType: "In-Person",
		Times: []course.SessionInterval{
			{Day: "Monday", Start: "8:30 AM", End: "9:50 AM"},
		},
	}
	alt := lecture
	alt.CourseCode = "COMP1405B"
	return &optimizer.GenerateResponse{
		Courses:      []course.ScheduledCourse{lecture},
		Alternatives: [][]course.ScheduledCourse{{alt}},
	}
}

func newState(codes ...string) *app.State {
	state := app.New()
	state.Edit(func(p *prefs.Store) {
		for i, code := range codes {
			if i > 0 {
				p.AddCourse()
			}
			p.UpdateCourseCode(i, code)
		}
	})
	return state
}

func TestGeneratePretty(t *testing.T) {
	state := newState("COMP1405")
	var out bytes.Buffer
	g := Generate{
		State:           state,
		Pipeline:        submit.New(state, &fakeOptimizer{resp: sampleResponse()}, nil),
		Label:           "Fall 2025",
		ShowPreferences: true,
		Out:             &out,
	}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Fall 2025 · Primary", "COMP1405A", "8:30 AM - 9:50 AM", "Ada Lovelace", "Monday"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestGenerateDumpAlternative(t *testing.T) {
	state := newState("COMP1405")
	var out bytes.Buffer
	g := Generate{
		State:       state,
		Pipeline:    submit.New(state, &fakeOptimizer{resp: sampleResponse()}, nil),
		Alternative: 1,
		Format:      printers.FormatYAML,
		Dump:        true,
		Out:         &out,
	}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	text := out.String()
	for _, want := range []string{"term: fall", "label: Fall", "position: Alternative 1 of 1", "currentAlternative: 0"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "preferences:") {
		t.Errorf("preferences dumped without ShowPreferences:\n%s", text)
	}
}

func TestSubmitErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name        string
		codes       []string
		opt         *fakeOptimizer
		alternative int
		want        string
	}{
		{name: "no courses", opt: &fakeOptimizer{resp: sampleResponse()}, want: "Please enter at least one course code."},
		{name: "invalid", codes: []string{"XYZ9999"}, opt: &fakeOptimizer{invalid: []string{"XYZ9999"}}, want: "Course XYZ9999 was not found for this term."},
		{name: "service", codes: []string{"COMP1405"}, opt: &fakeOptimizer{err: errors.New("boom")}, want: "Unable to generate schedule. Please try again later."},
		{name: "alternative", codes: []string{"COMP1405"}, opt: &fakeOptimizer{resp: sampleResponse()}, alternative: 3, want: "alternative 3 does not exist; 1 generated"},
		{name: "negative", codes: []string{"COMP1405"}, opt: &fakeOptimizer{resp: sampleResponse()}, alternative: -1, want: "alternative must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newState(tt.codes...)
			_, err := Submit(ctx, state, submit.New(state, tt.opt, nil), tt.alternative)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := Submit(ctx, app.New(), nil, 0); err == nil {
		t.Fatalf("expected error without a pipeline")
	}
}
