package commands

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

// installPath is the module path `go install` resolves for upgrades.
const installPath = "tableflip.dev/termwise@latest"

func addUpgrade(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade termwise to the latest release.",
		Long: fmt.Sprintf(`Rebuild termwise from the newest tagged release with
"go install %s". The binary lands in $GOBIN (or $GOPATH/bin), so a Go
toolchain must be on PATH. Configuration in ~/.termwise.yaml is untouched.`, installPath),
		Example: `
termwise upgrade
termwise version --short`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ex := exec.CommandContext(cmd.Context(), "go", "install", installPath)
			if out, err := ex.CombinedOutput(); err != nil {
				return output.HandleError(fmt.Errorf("go install %s: %w: %s", installPath, err, out))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Installed %s\n", installPath)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
