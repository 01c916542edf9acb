package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderchain"
	"github.com/gogpu/shaderchain/internal/imageio"
)

// render --preset p.yaml --input in.png [--output out.png]: run the
// chain over the input image and emit a PNG thumbnail.
func renderCmd() *cobra.Command {
	var (
		presetPath string
		shaderPath string
		inputPath  string
		outputPath string
		frames     int
		maxDim     int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a filter chain over an image and emit a PNG thumbnail",
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

			if frames < 1 {
				frames = 1
			}

			// Render frames sequentially so animated passes settle; the
			// last frame is the one emitted.
			var out *imageio.Image
			for f := range frames {
				out, err = chain.Render(src, uint32(f)) //nolint:gosec // frame count is a small flag value
				if err != nil {
					return fmt.Errorf("frame %d: %w", f, err)
				}
			}

			thumb := out.Thumbnail(maxDim)
			if outputPath == "" || outputPath == "-" {
				return thumb.EncodePNG(cmd.OutOrStdout())
			}
			return thumb.SavePNG(outputPath)
		},
	}

	cmd.Flags().StringVar(&presetPath, "preset", "", "chain preset file (YAML)")
	cmd.Flags().StringVar(&shaderPath, "shader", "", "single WGSL shader (instead of a preset)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input image (PNG or JPEG)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output PNG file (default stdout)")
	cmd.Flags().IntVar(&frames, "frames", 1, "frames to render; the last one is emitted")
	cmd.Flags().IntVar(&maxDim, "max-dim", 256, "thumbnail bound for the longer side (0 disables scaling)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
