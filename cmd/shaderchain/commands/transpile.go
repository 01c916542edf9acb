package commands

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderchain/transpile"
)

// transpile --shader f.wgsl [--target spirv|msl|ir]: compile a shader
// and dump the compiled source.
func transpileCmd() *cobra.Command {
	var (
		shaderPath string
		target     string
		outputPath string
		hexDump    bool
	)

	cmd := &cobra.Command{
		Use:   "transpile",
		Short: "Compile a WGSL shader and dump the compiled source",
		RunE: func(cmd *cobra.Command, args []string) error {
			tgt, err := transpile.ParseTarget(target)
			if err != nil {
				return err
			}

			source, err := os.ReadFile(filepath.Clean(shaderPath))
			if err != nil {
				return fmt.Errorf("read shader: %w", err)
			}

			res, err := transpile.Compile(string(source), tgt)
			if err != nil {
				return err
			}

			if res.Binary == nil {
				return writeOutput(cmd, outputPath, []byte(res.Text))
			}
			if hexDump || (outputPath == "" && stdoutIsTerminal()) {
				// Raw SPIR-V on a terminal is useless; hex-dump it.
				return writeOutput(cmd, outputPath, []byte(hex.Dump(res.Binary)))
			}
			return writeOutput(cmd, outputPath, res.Binary)
		},
	}

	cmd.Flags().StringVar(&shaderPath, "shader", "", "WGSL shader file")
	cmd.Flags().StringVar(&target, "target", "spirv", "output target: spirv, msl, or ir")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&hexDump, "hex", false, "hex-dump SPIR-V instead of raw binary")
	_ = cmd.MarkFlagRequired("shader")
	return cmd
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // compiled shader output, not a secret
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
