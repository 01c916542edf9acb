package shaderchain

import (
	"fmt"
	"time"

	"github.com/gogpu/shaderchain/internal/imageio"
)

// BenchConfig controls a benchmark run.
type BenchConfig struct {
	// Frames is the number of timed frames. Defaults to 512.
	Frames int
	// Warmup is the number of untimed frames rendered first, letting
	// driver-side pipeline and allocator caches settle. Zero renders no
	// warmup frames; negative values are treated as zero.
	Warmup int
}

func (cfg BenchConfig) withDefaults() BenchConfig {
	if cfg.Frames <= 0 {
		cfg.Frames = 512
	}
	if cfg.Warmup < 0 {
		cfg.Warmup = 0
	}
	return cfg
}

// BenchResult is the outcome of a benchmark run.
type BenchResult struct {
	// Frames is the number of timed frames rendered.
	Frames int
	// Elapsed is the wall time of the timed phase.
	Elapsed time.Duration
}

// FPS returns the achieved frames per second.
func (r BenchResult) FPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Elapsed.Seconds()
}

// MsPerFrame returns the mean frame time in milliseconds.
func (r BenchResult) MsPerFrame() float64 {
	if r.Frames == 0 {
		return 0
	}
	return r.Elapsed.Seconds() * 1000 / float64(r.Frames)
}

// String formats the result the way the bench command prints it.
func (r BenchResult) String() string {
	return fmt.Sprintf("%d frames in %v: %.2f ms/frame (%.1f fps)",
		r.Frames, r.Elapsed.Round(time.Millisecond), r.MsPerFrame(), r.FPS())
}

// Bench renders cfg.Warmup untimed frames, then cfg.Frames timed frames
// through the chain. Each frame is a full synchronous render (submit,
// fence wait, readback), so the result measures end-to-end throughput,
// not raw GPU time. The frame counter advances across both phases.
func Bench(c *Chain, src *imageio.Image, cfg BenchConfig) (BenchResult, error) {
	cfg = cfg.withDefaults()

	frame := uint32(0)
	for range cfg.Warmup {
		if _, err := c.Render(src, frame); err != nil {
			return BenchResult{}, fmt.Errorf("shaderchain: warmup frame %d: %w", frame, err)
		}
		frame++
	}

	start := time.Now()
	for range cfg.Frames {
		if _, err := c.Render(src, frame); err != nil {
			return BenchResult{}, fmt.Errorf("shaderchain: bench frame %d: %w", frame, err)
		}
		frame++
	}

	return BenchResult{Frames: cfg.Frames, Elapsed: time.Since(start)}, nil
}
