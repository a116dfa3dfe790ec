// Package ui starts the interactive planner.
package ui

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/export"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/printers"
	"tableflip.dev/termwise/pkg/submit"
	teaui "tableflip.dev/termwise/pkg/tui/app"
)

// ErrNoTerminal is returned when stdout is not a terminal.
var ErrNoTerminal = errors.New("termwise ui needs an interactive terminal; try termwise generate instead")

type UI struct {
	State    *app.State
	Pipeline *submit.Pipeline
	Engine   *layout.Engine
	Terms    map[course.Term]export.Term
	Logger   *zap.Logger

	// Run replaces the Bubble Tea program in tests.
	Run func(teaui.Options) error
}

func (u *UI) Do(ctx context.Context) error {
	run := u.Run
	if run == nil {
		if !printers.IsTerminal(os.Stdout) {
			return ErrNoTerminal
		}
		run = teaui.Run
	}
	if u.State == nil {
		u.State = app.New()
	}
	return run(teaui.Options{
		State:    u.State,
		Pipeline: u.Pipeline,
		Engine:   u.Engine,
		Terms:    u.Terms,
		Logger:   u.Logger,
		Context:  ctx,
	})
}
