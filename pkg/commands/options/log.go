package options

import (
	"github.com/spf13/cobra"
)

// LogOptions overrides the configured logger.
type LogOptions struct {
	Level string
	File  string
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.Flags().StringVar(&o.Level, "log-level", "",
		"Log level (debug, info, warn, error). Defaults to the configured level.")
	cmd.Flags().StringVar(&o.File, "log-file", "",
		"Write logs to this file instead of stderr.")
}
