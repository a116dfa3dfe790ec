// Package export generates a schedule and writes it as a spreadsheet or an
// iCalendar file.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/export"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/runner/generate"
	"tableflip.dev/termwise/pkg/submit"
)

type Export struct {
	State    *app.State
	Pipeline *submit.Pipeline
	Engine   *layout.Engine
	Terms    map[course.Term]export.Term

	Path        string
	Alternative int
	Now         func() time.Time

	Out io.Writer
}

func (e *Export) Do(ctx context.Context) error {
	// Fail on a bad extension before calling the optimizer.
	if _, err := export.ParseFormat(e.Path); err != nil {
		return err
	}
	out := e.Out
	if out == nil {
		out = os.Stdout
	}
	now := e.Now
	if now == nil {
		now = time.Now
	}
	engine := e.Engine
	if engine == nil {
		engine = layout.New(layout.DefaultConfig())
	}

	r, err := generate.Submit(ctx, e.State, e.Pipeline, e.Alternative)
	if err != nil {
		return err
	}
	t := e.State.Term()
	term := e.Terms[t]
	if term.Label == "" {
		term.Label = t.Title()
	}
	if err := export.WriteFile(e.Path, engine, term, r.Displayed(), now()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Exported %s (%s) to %s\n", term.Label, r.Position(), e.Path)
	return nil
}
