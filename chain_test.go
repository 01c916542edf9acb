package shaderchain

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderchain/preset"
)

// The render path submits for a submission index, polls it, and maps
// the staging buffer. These pin the HAL surface it relies on.
var (
	_ func(hal.Queue, []hal.CommandBuffer) (uint64, error)                    = hal.Queue.Submit
	_ func(hal.Queue) uint64                                                  = hal.Queue.PollCompleted
	_ func(hal.Device, hal.Buffer, uint64, uint64) (hal.BufferMapping, error) = hal.Device.MapBuffer
	_ func(hal.Device, hal.Buffer) error                                      = hal.Device.UnmapBuffer
)

func TestScaledExtent(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		scale        float64
		wantW, wantH int
	}{
		{"identity", 640, 480, 1.0, 640, 480},
		{"double", 320, 240, 2.0, 640, 480},
		{"half", 640, 480, 0.5, 320, 240},
		{"rounds", 3, 3, 0.5, 2, 2},
		{"clamps to 1x1", 4, 4, 0.01, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := scaledExtent(tt.w, tt.h, tt.scale)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("scaledExtent(%d, %d, %v) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.scale, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	pixels := []byte{
		0x10, 0x20, 0x30, 0xFF,
		0x00, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
		0xAB, 0xCD, 0xEF, 0x7F,
	}

	packed := packPixels(pixels, 4)
	if len(packed) != len(pixels) {
		t.Fatalf("len(packed) = %d, want %d", len(packed), len(pixels))
	}

	got := make([]byte, len(pixels))
	unpackPixels(packed, got, 4)
	if !bytes.Equal(got, pixels) {
		t.Errorf("round trip = %v, want %v", got, pixels)
	}
}

func TestPassParamsLayout(t *testing.T) {
	// The uniform block is 8 u32 fields; the WGSL side depends on it.
	if size := unsafe.Sizeof(passParams{}); size != 32 {
		t.Errorf("sizeof(passParams) = %d, want 32", size)
	}
	data := makePassParams(1, 2, 3, 4, 5, 6, 1)
	if len(data) != 32 {
		t.Errorf("len(makePassParams()) = %d, want 32", len(data))
	}
}

func TestNewRejectsEmptyPreset(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, preset.ErrNoPasses) {
		t.Errorf("New(nil) error = %v, want ErrNoPasses", err)
	}
	if _, err := New(&preset.Preset{}); !errors.Is(err, preset.ErrNoPasses) {
		t.Errorf("New(empty) error = %v, want ErrNoPasses", err)
	}
}

func TestNewMissingShaderFile(t *testing.T) {
	// Shader files are read before any GPU resource is touched, so this
	// fails the same way with or without a GPU.
	p := preset.FromShader(filepath.Join(t.TempDir(), "nope.wgsl"))
	if _, err := New(p); err == nil {
		t.Error("New() error = nil, want missing shader error")
	}
}

func TestBenchConfigDefaults(t *testing.T) {
	cfg := BenchConfig{}.withDefaults()
	if cfg.Frames != 512 {
		t.Errorf("Frames = %d, want 512", cfg.Frames)
	}
	if cfg.Warmup != 0 {
		t.Errorf("Warmup = %d, want 0", cfg.Warmup)
	}

	// An explicit zero warmup stays zero.
	cfg = BenchConfig{Frames: 2, Warmup: 0}.withDefaults()
	if cfg.Warmup != 0 {
		t.Errorf("Warmup = %d, want 0", cfg.Warmup)
	}

	cfg = BenchConfig{Frames: 8, Warmup: -1}.withDefaults()
	if cfg.Frames != 8 {
		t.Errorf("Frames = %d, want 8", cfg.Frames)
	}
	if cfg.Warmup != 0 {
		t.Errorf("Warmup = %d, want 0", cfg.Warmup)
	}
}

func TestBenchResultMath(t *testing.T) {
	r := BenchResult{Frames: 100, Elapsed: 2_000_000_000} // 2s
	if got := r.FPS(); got != 50 {
		t.Errorf("FPS() = %v, want 50", got)
	}
	if got := r.MsPerFrame(); got != 20 {
		t.Errorf("MsPerFrame() = %v, want 20", got)
	}

	var zero BenchResult
	if zero.FPS() != 0 || zero.MsPerFrame() != 0 {
		t.Error("zero result should report 0 fps and 0 ms/frame")
	}
}
