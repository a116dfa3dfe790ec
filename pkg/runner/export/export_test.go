package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/export"
	"tableflip.dev/termwise/pkg/optimizer"
	"tableflip.dev/termwise/pkg/prefs"
	"tableflip.dev/termwise/pkg/submit"
)

type fakeOptimizer struct {
	calls int
}

func (f *fakeOptimizer) Validate(context.Context, course.Term, []course.CoursePreference) (*optimizer.ValidateResponse, error) {
	f.calls++
	return &optimizer.ValidateResponse{}, nil
}

func (f *fakeOptimizer) Generate(context.Context, course.Term, course.TermPreferences) (*optimizer.GenerateResponse, error) {
	return &optimizer.GenerateResponse{
		Courses: []course.ScheduledCourse{{
			CourseCode:  "COMP1405A",
			Title:       "Introduction to Computer Science I",
			SectionType: "In-Person",
			Times:       []course.SessionInterval{{Day: "Tuesday", Start: "10:00 AM", End: "11:30 AM"}},
		}},
	}, nil
}

func newExport(t *testing.T, path string, opt *fakeOptimizer) (*Export, *bytes.Buffer) {
	t.Helper()
	state := app.New()
	state.Edit(func(p *prefs.Store) { p.UpdateCourseCode(0, "COMP1405") })
	var out bytes.Buffer
	return &Export{
		State:    state,
		Pipeline: submit.New(state, opt, nil),
		Terms: map[course.Term]export.Term{
			course.Fall: {Label: "Fall 2025", Start: time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), Weeks: 12},
		},
		Path: path,
		Now:  func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) },
		Out:  &out,
	}, &out
}

func TestExportICS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fall.ics")
	e, out := newExport(t, path, &fakeOptimizer{})
	if err := e.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "COUNT=12") {
		t.Fatalf("expected a 12 week recurrence:\n%s", data)
	}
	if got := out.String(); got != "Exported Fall 2025 (Primary) to "+path+"\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestExportBadExtensionSkipsOptimizer(t *testing.T) {
	opt := &fakeOptimizer{}
	e, _ := newExport(t, filepath.Join(t.TempDir(), "fall.pdf"), opt)
	if err := e.Do(context.Background()); err == nil {
		t.Fatalf("expected error for .pdf")
	}
	if opt.calls != 0 {
		t.Fatalf("optimizer called %d times", opt.calls)
	}
}
