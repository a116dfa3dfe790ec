package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/termwise/pkg/commands/options"
	"tableflip.dev/termwise/pkg/runner/export"
)

func addExport(topLevel *cobra.Command) {
	lo := &options.LogOptions{}
	po := &options.PrefsOptions{}
	var alternative int

	cmd := &cobra.Command{
		Use:   "export FILE [course codes...]",
		Short: "generate a schedule and write it to .xlsx or .ics",
		Example: `
termwise export fall.xlsx COMP1405 COMP1406
termwise export winter.ics --prefs winter.yaml --alternative 1
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(lo, false)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()

			po.Courses = args[1:]
			if err := po.Apply(env.state); err != nil {
				return err
			}
			e := export.Export{
				State:       env.state,
				Pipeline:    env.pipeline,
				Engine:      env.cfg.Engine(),
				Terms:       env.cfg.ExportTerms(),
				Path:        args[0],
				Alternative: alternative,
				Out:         cmd.OutOrStdout(),
			}
			return e.Do(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&alternative, "alternative", "a", 0,
		"Export this alternative instead of the primary schedule (1 is the first alternative).")
	options.AddPrefsArgs(cmd, po)
	options.AddLogArgs(cmd, lo)

	topLevel.AddCommand(cmd)
}
