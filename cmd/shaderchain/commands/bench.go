package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderchain"
	"github.com/gogpu/shaderchain/internal/imageio"
)

// bench --preset p.yaml --input in.png [--frames N]: measure chain
// rendering throughput.
func benchCmd() *cobra.Command {
	var (
		presetPath string
		shaderPath string
		inputPath  string
		frames     int
		warmup     int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure chain rendering throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadChainPreset(presetPath, shaderPath)
			if err != nil {
				return err
			}

			src, err := imageio.Load(inputPath)
			if err != nil {
				return err
			}

			chain, err := shaderchain.New(p)
			if err != nil {
				return err
			}
			defer chain.Close()

			res, err := shaderchain.Bench(chain, src, shaderchain.BenchConfig{
				Frames: frames,
				Warmup: warmup,
			})
			if err != nil {
				return err
			}

			outW, outH := chain.OutputExtent(src.Width, src.Height)
			fmt.Fprintf(cmd.OutOrStdout(), "device: %s\n", chain.DeviceInfo())
			fmt.Fprintf(cmd.OutOrStdout(), "chain: %d passes (%s), %dx%d -> %dx%d\n",
				len(chain.PassNames()), chain.Filter(), src.Width, src.Height, outW, outH)
			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&presetPath, "preset", "", "chain preset file (YAML)")
	cmd.Flags().StringVar(&shaderPath, "shader", "", "single WGSL shader (instead of a preset)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input image (PNG or JPEG)")
	cmd.Flags().IntVar(&frames, "frames", 512, "timed frames to render")
	cmd.Flags().IntVar(&warmup, "warmup", 16, "untimed warmup frames")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
