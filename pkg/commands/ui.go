package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/termwise/pkg/commands/options"
	"tableflip.dev/termwise/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	lo := &options.LogOptions{}
	po := &options.PrefsOptions{}

	cmd := &cobra.Command{
		Use:   "ui [course codes...]",
		Short: "open the interactive planner",
		Example: `
termwise ui
termwise ui COMP1405 MATH1007 --term winter
termwise ui --prefs fall.yaml --log-file termwise.log --log-level debug
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(lo, true)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()

			po.Courses = args
			if err := po.Apply(env.state); err != nil {
				return err
			}
			i := ui.UI{
				State:    env.state,
				Pipeline: env.pipeline,
				Engine:   env.cfg.Engine(),
				Terms:    env.cfg.ExportTerms(),
				Logger:   env.logger,
			}
			return i.Do(cmd.Context())
		},
	}

	options.AddPrefsArgs(cmd, po)
	options.AddLogArgs(cmd, lo)

	topLevel.AddCommand(cmd)
}
