// Package options defines shared flag helpers for CLI commands.
package options

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/termwise/pkg/printers"
)

// OutputOptions
type OutputOptions struct {
	JSON   bool
	Output string
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
	cmd.Flags().StringVarP(&po.Output, "output", "o", "pretty",
		"Output format. One of 'pretty', 'yaml' or 'json'.")
}

// Format resolves the dump format; ok is false for pretty output.
func (o *OutputOptions) Format() (printers.Format, bool, error) {
	if o.JSON {
		return printers.FormatJSON, true, nil
	}
	switch strings.ToLower(strings.TrimSpace(o.Output)) {
	case "", "pretty":
		return "", false, nil
	case "yaml", "yml":
		return printers.FormatYAML, true, nil
	case "json":
		return printers.FormatJSON, true, nil
	}
	return "", false, fmt.Errorf("unknown output %q (expected pretty, yaml or json)", o.Output)
}

func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
