// Package generate runs one submission from the command line and prints the
// schedule.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/printers"
	"tableflip.dev/termwise/pkg/results"
	"tableflip.dev/termwise/pkg/submit"
)

type Generate struct {
	State    *app.State
	Pipeline *submit.Pipeline
	Engine   *layout.Engine
	Label    string

	// Alternative selects the schedule to show: 0 is primary, n the nth
	// alternative.
	Alternative int
	// ShowPreferences prints the submitted preferences before the schedule.
	ShowPreferences bool
	// Format dumps the result instead of drawing it when Dump is set.
	Format printers.Format
	Dump   bool

	Out io.Writer
}

// Submit generates a schedule for the selected term and moves to the
// requested alternative.
func Submit(ctx context.Context, state *app.State, pipeline *submit.Pipeline, alternative int) (results.TermResult, error) {
	if pipeline == nil {
		return results.TermResult{}, errors.New("no optimizer configured")
	}
	if alternative < 0 {
		return results.TermResult{}, fmt.Errorf("alternative must not be negative")
	}
	if _, err := pipeline.Submit(ctx); err != nil {
		return results.TermResult{}, errors.New(submit.UserMessage(err))
	}
	term := state.Term()
	if alternative > 0 {
		if err := state.SelectAlternative(alternative - 1); err != nil {
			n := len(state.Result(term).Alternatives)
			return results.TermResult{}, fmt.Errorf("alternative %d does not exist; %d generated", alternative, n)
		}
	}
	return state.Result(term), nil
}

// output is the machine readable form of a run.
type output struct {
	Term        string                  `json:"term" yaml:"term"`
	Label       string                  `json:"label" yaml:"label"`
	Position    string                  `json:"position" yaml:"position"`
	Preferences *course.TermPreferences `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	Result      results.TermResult      `json:"result" yaml:"result"`
}

func (g *Generate) Do(ctx context.Context) error {
	out := g.Out
	if out == nil {
		out = os.Stdout
	}
	engine := g.Engine
	if engine == nil {
		engine = layout.New(layout.DefaultConfig())
	}

	r, err := Submit(ctx, g.State, g.Pipeline, g.Alternative)
	if err != nil {
		return err
	}
	label := g.Label
	if label == "" {
		label = g.State.Term().Title()
	}

	if g.Dump {
		o := output{
			Term:     string(g.State.Term()),
			Label:    label,
			Position: r.Position(),
			Result:   r,
		}
		if g.ShowPreferences {
			p := g.State.Snapshot().Preferences
			o.Preferences = &p
		}
		return printers.Dump(out, g.Format, o)
	}

	pp := printers.New(out)
	if g.ShowPreferences {
		pp.Preferences(label, g.State.Snapshot().Preferences)
		pp.NewLine()
	}
	pp.Result(label, r)
	pp.NewLine()
	pp.Calendar(engine, r.Displayed())
	return nil
}
