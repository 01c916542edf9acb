package shaderchain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderchain/internal/gpudev"
	"github.com/gogpu/shaderchain/internal/imageio"
	"github.com/gogpu/shaderchain/preset"
)

// Chain errors.
var (
	// ErrChainClosed is returned when operations are attempted on a
	// closed chain.
	ErrChainClosed = errors.New("shaderchain: chain is closed")

	// ErrNoGPU is returned when no usable GPU device exists.
	ErrNoGPU = gpudev.ErrNoGPU
)

// Chain is a compiled filter chain: an open GPU device plus one compute
// pipeline per preset pass. Frames are rendered synchronously, one at a
// time.
//
// Chain is NOT safe for concurrent use.
type Chain struct {
	dev    *gpudev.GPU
	label  string
	filter preset.FilterMode

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	passes     []*chainPass

	closed bool
}

// New compiles the preset's passes into a chain. Unless
// [WithDeviceProvider] is given, the chain acquires its own Vulkan
// device, released again by Close.
func New(p *preset.Preset, opts ...Option) (*Chain, error) {
	if p == nil || len(p.Passes) == 0 {
		return nil, preset.ErrNoPasses
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// Read all shader sources up front so path errors surface before any
	// GPU resource is created.
	sources := make([]string, len(p.Passes))
	for i, pass := range p.Passes {
		data, err := os.ReadFile(filepath.Clean(pass.Shader))
		if err != nil {
			return nil, fmt.Errorf("shaderchain: read pass %d shader: %w", i, err)
		}
		sources[i] = string(data)
	}

	var dev *gpudev.GPU
	var err error
	if o.provider != nil {
		dev, err = gpudev.FromProvider(o.provider)
	} else {
		dev, err = gpudev.Acquire()
	}
	if err != nil {
		return nil, err
	}

	c := &Chain{dev: dev, label: o.label, filter: p.Filter}
	if err := c.createChainLayouts(); err != nil {
		c.Close()
		return nil, err
	}

	for i, pass := range p.Passes {
		cp, err := c.compilePass(i, filepath.Base(pass.Shader), sources[i], pass.Scale)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.passes = append(c.passes, cp)
	}

	Logger().Info("shaderchain: chain ready",
		"adapter", dev.Info.String(), "passes", len(c.passes))
	return c, nil
}

// compilePass compiles WGSL source into a compute pipeline using the
// chain's shared layouts.
func (c *Chain) compilePass(index int, name, source string, scale float64) (*chainPass, error) {
	shader, err := c.dev.Device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  name,
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, fmt.Errorf("shaderchain: compile pass %d (%s): %w", index, name, err)
	}

	pipeline, err := c.dev.Device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   name,
		Layout:  c.pipeLayout,
		Compute: hal.ComputeState{Module: shader, EntryPoint: passEntryPoint},
	})
	if err != nil {
		c.dev.Device.DestroyShaderModule(shader)
		return nil, fmt.Errorf("shaderchain: create pipeline for pass %d (%s): %w", index, name, err)
	}

	return &chainPass{name: name, scale: scale, shader: shader, pipeline: pipeline}, nil
}

// PassNames returns the shader file names of the chain's passes in
// execution order.
func (c *Chain) PassNames() []string {
	names := make([]string, len(c.passes))
	for i, p := range c.passes {
		names[i] = p.name
	}
	return names
}

// DeviceInfo returns a human-readable description of the GPU in use.
func (c *Chain) DeviceInfo() string {
	return c.dev.Info.String()
}

// Filter returns the sampling mode the preset declared.
func (c *Chain) Filter() preset.FilterMode {
	return c.filter
}

// filterWord encodes the filter mode for the pass uniform block.
func (c *Chain) filterWord() uint32 {
	if c.filter == preset.FilterNearest {
		return 0
	}
	return 1
}

// OutputExtent returns the extent the chain produces for a given source
// extent, after every pass scale has been applied.
func (c *Chain) OutputExtent(srcW, srcH int) (int, int) {
	w, h := srcW, srcH
	for _, p := range c.passes {
		w, h = scaledExtent(w, h, p.scale)
	}
	return w, h
}

// Render runs the source image through every pass and returns the final
// output. The frame counter is exposed to pass shaders through their
// uniform block so animated filters can advance.
//
// Render is fully synchronous: it submits once and waits for the queue
// to drain before mapping pixels back. It never mutates src.
func (c *Chain) Render(src *imageio.Image, frame uint32) (*imageio.Image, error) {
	if c.closed {
		return nil, ErrChainClosed
	}
	if src == nil || len(src.Pix) == 0 {
		return nil, imageio.ErrEmptyImage
	}

	// Resolve per-pass extents and the largest buffer any stage needs.
	stages := make([]passExtent, len(c.passes))
	w, h := src.Width, src.Height
	maxPixels := w * h
	for i, p := range c.passes {
		ow, oh := scaledExtent(w, h, p.scale)
		stages[i] = passExtent{srcW: w, srcH: h, dstW: ow, dstH: oh}
		if ow*oh > maxPixels {
			maxPixels = ow * oh
		}
		w, h = ow, oh
	}
	outW, outH := w, h
	bufSize := uint64(maxPixels * 4)
	outSize := uint64(outW * outH * 4)

	Logger().Debug("shaderchain: render frame",
		"frame", frame, "src", fmt.Sprintf("%dx%d", src.Width, src.Height),
		"out", fmt.Sprintf("%dx%d", outW, outH), "passes", len(c.passes))

	// Two storage buffers ping-pong between passes; a staging buffer
	// receives the final pixels for mapped readback.
	pixelUsage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	bufA, err := c.dev.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: c.label + "_ping", Size: bufSize, Usage: pixelUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderchain: create ping buffer: %w", err)
	}
	defer c.dev.Device.DestroyBuffer(bufA)

	bufB, err := c.dev.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: c.label + "_pong", Size: bufSize, Usage: pixelUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderchain: create pong buffer: %w", err)
	}
	defer c.dev.Device.DestroyBuffer(bufB)

	staging, err := c.dev.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: c.label + "_staging", Size: outSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderchain: create staging buffer: %w", err)
	}
	defer c.dev.Device.DestroyBuffer(staging)

	c.dev.Queue.WriteBuffer(bufA, 0, packPixels(src.Pix, src.Width*src.Height))

	// Per-pass uniform buffers and bind groups. Input alternates between
	// the two pixel buffers.
	uniforms := make([]hal.Buffer, 0, len(c.passes))
	bindGroups := make([]hal.BindGroup, 0, len(c.passes))
	defer func() {
		for _, bg := range bindGroups {
			c.dev.Device.DestroyBindGroup(bg)
		}
		for _, ub := range uniforms {
			c.dev.Device.DestroyBuffer(ub)
		}
	}()

	paramSize := uint64(unsafe.Sizeof(passParams{}))
	in, out := bufA, bufB
	for i, st := range stages {
		ub, err := c.dev.Device.CreateBuffer(&hal.BufferDescriptor{
			Label: c.label + "_params", Size: paramSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("shaderchain: create uniform buffer %d: %w", i, err)
		}
		uniforms = append(uniforms, ub)
		//nolint:gosec // extents come from image dimensions, always fit uint32
		c.dev.Queue.WriteBuffer(ub, 0, makePassParams(
			uint32(st.srcW), uint32(st.srcH), uint32(st.dstW), uint32(st.dstH), frame, uint32(i), c.filterWord()))

		bg, err := c.dev.Device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: c.label + "_bind", Layout: c.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: paramSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: in.NativeHandle(), Offset: 0, Size: bufSize}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: out.NativeHandle(), Offset: 0, Size: bufSize}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("shaderchain: create bind group %d: %w", i, err)
		}
		bindGroups = append(bindGroups, bg)
		in, out = out, in
	}
	final := in // after the last swap, "in" holds the last pass output

	if err := c.encodeFrame(bindGroups, stages, final, staging, outSize); err != nil {
		return nil, err
	}

	// The submission has completed, so the staging buffer is safe to map.
	readback := make([]byte, outSize)
	mapping, err := c.dev.Device.MapBuffer(staging, 0, outSize)
	if err != nil {
		return nil, fmt.Errorf("shaderchain: map staging buffer: %w", err)
	}
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), outSize)) //nolint:gosec // mapped range is outSize bytes
	if err := c.dev.Device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("shaderchain: unmap staging buffer: %w", err)
	}

	result, err := imageio.New(outW, outH)
	if err != nil {
		return nil, err
	}
	unpackPixels(readback, result.Pix, outW*outH)
	return result, nil
}

// encodeFrame records one compute pass per chain pass into a single
// command encoder, copies the final buffer to staging, submits, and
// waits for the submission to complete. Implicit storage barriers
// between passes keep the ping-pong ordering correct.
func (c *Chain) encodeFrame(bindGroups []hal.BindGroup, stages []passExtent, final, staging hal.Buffer, outSize uint64) error {
	encoder, err := c.dev.Device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: c.label + "_encoder"})
	if err != nil {
		return fmt.Errorf("shaderchain: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(c.label); err != nil {
		return fmt.Errorf("shaderchain: begin encoding: %w", err)
	}

	for i, bg := range bindGroups {
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: c.passes[i].name})
		pass.SetPipeline(c.passes[i].pipeline)
		pass.SetBindGroup(0, bg, nil)
		//nolint:gosec // extents come from image dimensions, always fit uint32
		pass.Dispatch(
			(uint32(stages[i].dstW)+workgroupDim-1)/workgroupDim,
			(uint32(stages[i].dstH)+workgroupDim-1)/workgroupDim, 1)
		pass.End()
	}

	encoder.CopyBufferToBuffer(final, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: outSize},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("shaderchain: end encoding: %w", err)
	}
	defer c.dev.Device.FreeCommandBuffer(cmdBuf)

	subIdx, err := c.dev.Queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("shaderchain: submit: %w", err)
	}

	// The HAL manages its own fences; drain the device and confirm the
	// submission index has retired before the caller maps the staging
	// buffer.
	if err := c.dev.Device.WaitIdle(); err != nil {
		return fmt.Errorf("shaderchain: wait for GPU: %w", err)
	}
	if completed := c.dev.Queue.PollCompleted(); completed < subIdx {
		return fmt.Errorf("shaderchain: submission %d not completed (GPU at %d)", subIdx, completed)
	}
	return nil
}

// Close releases pipelines, layouts, and the device (unless shared).
// Safe to call more than once.
func (c *Chain) Close() {
	if c.closed {
		return
	}
	c.closed = true

	if c.dev != nil && c.dev.Device != nil {
		for _, p := range c.passes {
			p.destroy(c.dev.Device)
		}
		if c.pipeLayout != nil {
			c.dev.Device.DestroyPipelineLayout(c.pipeLayout)
			c.pipeLayout = nil
		}
		if c.bindLayout != nil {
			c.dev.Device.DestroyBindGroupLayout(c.bindLayout)
			c.bindLayout = nil
		}
	}
	c.passes = nil
	if c.dev != nil {
		c.dev.Close()
	}
}

// packPixels converts RGBA8 bytes into the packed little-endian u32
// layout pass shaders read.
func packPixels(data []uint8, pixelCount int) []byte {
	out := make([]byte, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		srcIdx := i * 4
		r := uint32(data[srcIdx+0])
		g := uint32(data[srcIdx+1])
		b := uint32(data[srcIdx+2])
		a := uint32(data[srcIdx+3])
		packed := r | (g << 8) | (b << 16) | (a << 24)
		binary.LittleEndian.PutUint32(out[i*4:], packed)
	}
	return out
}

// unpackPixels converts packed u32 pixels back into RGBA8 bytes.
func unpackPixels(packed []byte, dst []uint8, pixelCount int) {
	for i := 0; i < pixelCount; i++ {
		val := binary.LittleEndian.Uint32(packed[i*4:])
		dstIdx := i * 4
		dst[dstIdx+0] = uint8(val & 0xFF)         //nolint:gosec // masked to 8 bits
		dst[dstIdx+1] = uint8((val >> 8) & 0xFF)  //nolint:gosec // masked to 8 bits
		dst[dstIdx+2] = uint8((val >> 16) & 0xFF) //nolint:gosec // masked to 8 bits
		dst[dstIdx+3] = uint8((val >> 24) & 0xFF) //nolint:gosec // masked to 8 bits
	}
}
