package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderchain"
	"github.com/gogpu/shaderchain/preset"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "shaderchain",
		Short:        "Render, inspect, and benchmark WGSL filter chains",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				shaderchain.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")

	root.AddCommand(renderCmd(), transpileCmd(), benchCmd(), presetCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

// loadChainPreset resolves the --preset / --shader pair every rendering
// command shares: exactly one must be set.
func loadChainPreset(presetPath, shaderPath string) (*preset.Preset, error) {
	switch {
	case presetPath != "" && shaderPath != "":
		return nil, errors.New("--preset and --shader are mutually exclusive")
	case presetPath != "":
		return preset.Load(presetPath)
	case shaderPath != "":
		return preset.FromShader(shaderPath), nil
	default:
		return nil, errors.New("one of --preset or --shader is required")
	}
}
