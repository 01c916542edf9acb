package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderchain/preset"
)

// preset <file>: parse a preset and print its resolved pass list.
func presetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preset <file>",
		Short: "Parse a preset file and print its resolved pass list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preset.Load(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "filter: %s\n", p.Filter)
			fmt.Fprintf(cmd.OutOrStdout(), "passes: %d\n", len(p.Passes))
			for i, pass := range p.Passes {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s scale=%g\n", i, pass.Shader, pass.Scale)
			}
			return nil
		},
	}
}
