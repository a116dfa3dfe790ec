package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/termwise/pkg/commands/options"
	"tableflip.dev/termwise/pkg/runner/generate"
)

func addGenerate(topLevel *cobra.Command) {
	lo := &options.LogOptions{}
	po := &options.PrefsOptions{}
	var (
		alternative int
		showPrefs   bool
	)

	cmd := &cobra.Command{
		Use:   "generate [course codes...]",
		Short: "generate a schedule and print it",
		Example: `
termwise generate COMP1405 COMP1406 MATH1007
termwise generate COMP1405 --buffer 1h --avail fri=none --max mon=2
termwise generate --prefs winter.yaml --alternative 2 -o yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, dump, err := output.Format()
			if err != nil {
				return output.HandleError(err)
			}
			env, err := loadEnvironment(lo, false)
			if err != nil {
				return output.HandleError(err)
			}
			defer func() { _ = env.logger.Sync() }()

			po.Courses = args
			if err := po.Apply(env.state); err != nil {
				return output.HandleError(err)
			}
			g := generate.Generate{
				State:           env.state,
				Pipeline:        env.pipeline,
				Engine:          env.cfg.Engine(),
				Label:           env.cfg.Label(env.state.Term()),
				Alternative:     alternative,
				ShowPreferences: showPrefs,
				Format:          format,
				Dump:            dump,
				Out:             cmd.OutOrStdout(),
			}
			return output.HandleError(g.Do(cmd.Context()))
		},
	}

	cmd.Flags().IntVarP(&alternative, "alternative", "a", 0,
		"Show this alternative instead of the primary schedule (1 is the first alternative).")
	cmd.Flags().BoolVar(&showPrefs, "show-prefs", false,
		"Print the submitted preferences before the schedule.")
	options.AddPrefsArgs(cmd, po)
	options.AddOutputArg(cmd, output)
	options.AddLogArgs(cmd, lo)

	topLevel.AddCommand(cmd)
}
