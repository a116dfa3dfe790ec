package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/termwise/pkg/commands/options"
	"tableflip.dev/termwise/pkg/config"
	"tableflip.dev/termwise/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	lo := &options.LogOptions{}
	var (
		addr    string
		envFile string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the optimizer boundary server",
		Long: base.Wrap80(`Serve /api/validate-courses and /api/generate-schedule, forwarding to the
configured course catalogue with rate limiting and a validation cache. Changes to
server.rate_limit in the config file apply without a restart.`),
		Example: `
termwise serve
termwise serve --addr 0.0.0.0:8080 --env-file deploy.env
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is normal outside deployments.
			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("load %s: %w", envFile, err)
			}

			env, err := loadEnvironment(lo, false)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()

			if addr != "" {
				env.cfg.Server.Addr = addr
			}
			s := serve.Serve{
				Config:  env.cfg,
				Logger:  env.logger,
				Reload:  config.Load,
				NoCache: noCache,
				OnListening: func(a string) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "termwise server listening on http://%s\n", a)
				},
			}
			return s.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "",
		"Listen address. Defaults to server.addr.")
	cmd.Flags().StringVar(&envFile, "env-file", ".env",
		"Environment file loaded before the configuration.")
	cmd.Flags().BoolVar(&noCache, "no-cache", false,
		"Disable the on-disk validation cache.")
	options.AddLogArgs(cmd, lo)

	topLevel.AddCommand(cmd)
}
