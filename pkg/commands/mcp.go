package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/termwise/pkg/commands/options"
	"tableflip.dev/termwise/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	lo := &options.LogOptions{}
	po := &options.PrefsOptions{}
	mo := &options.MCPOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that lets an assistant edit term preferences, generate
schedules and browse alternatives through the Model Context Protocol. State lives
in memory for the life of the server.`,
		Example: `
  termwise mcp --transport stdio
  termwise mcp --http-port 0 -f prefs.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, err := mcp.ParseTransport(mo.Transport)
			if err != nil {
				return err
			}
			addr, err := mo.Addr()
			if err != nil {
				return err
			}

			// stdio carries the protocol, so only a log file may be written.
			env, err := loadEnvironment(lo, transport == mcp.TransportStdio)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()
			if err := po.Apply(env.state); err != nil {
				return err
			}

			r := mcp.Runner{
				State:     env.state,
				Pipeline:  env.pipeline,
				Engine:    env.cfg.Engine(),
				Labels:    env.cfg.Labels(),
				Logger:    env.logger.Named("mcp"),
				Version:   version,
				Transport: transport,
				Addr:      addr,
				Path:      mo.Path,
				TLSCert:   strings.TrimSpace(mo.TLSCert),
				TLSKey:    strings.TrimSpace(mo.TLSKey),
				OnListening: func(url string) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n", url)
				},
			}
			return r.Do(cmd.Context())
		},
	}

	options.AddMCPArgs(cmd, mo)
	options.AddPrefsArgs(cmd, po)
	options.AddLogArgs(cmd, lo)

	topLevel.AddCommand(cmd)
}
