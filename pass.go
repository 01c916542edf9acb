package shaderchain

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Pass shader binding contract. Every pass is a WGSL compute shader with
// entry point "main", an 8x8 workgroup, and bind group 0 laid out as:
//
//	@binding(0) var<uniform> params: PassParams;
//	@binding(1) var<storage, read> src: array<u32>;
//	@binding(2) var<storage, read_write> dst: array<u32>;
//
// Pixels are packed RGBA8, one u32 per pixel, little-endian (R in the
// low byte). The uniform block carries the preset's filter mode so
// passes that resample can honor it.
const (
	passEntryPoint = "main"
	workgroupDim   = 8
)

// passParams is the uniform block visible to every pass shader.
// Field order and padding must match the WGSL PassParams struct.
type passParams struct {
	SrcWidth  uint32
	SrcHeight uint32
	DstWidth  uint32
	DstHeight uint32
	Frame     uint32
	PassIndex uint32
	Filter    uint32 // 0 = nearest, 1 = linear
	_         uint32
}

// chainPass is one compiled stage of the chain.
type chainPass struct {
	name     string
	scale    float64
	shader   hal.ShaderModule
	pipeline hal.ComputePipeline
}

func (p *chainPass) destroy(device hal.Device) {
	if p.pipeline != nil {
		device.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// passExtent is the resolved input/output extent of one pass for a
// particular source image.
type passExtent struct {
	srcW, srcH int
	dstW, dstH int
}

// createChainLayouts creates the bind group layout and pipeline layout
// shared by every pass.
func (c *Chain) createChainLayouts() error {
	bindLayout, err := c.dev.Device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "chain_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("shaderchain: create bind group layout: %w", err)
	}
	c.bindLayout = bindLayout

	pipeLayout, err := c.dev.Device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "chain_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("shaderchain: create pipeline layout: %w", err)
	}
	c.pipeLayout = pipeLayout
	return nil
}

// makePassParams returns the serialized uniform block for one pass.
func makePassParams(srcW, srcH, dstW, dstH, frame, passIndex, filter uint32) []byte {
	params := passParams{
		SrcWidth: srcW, SrcHeight: srcH,
		DstWidth: dstW, DstHeight: dstH,
		Frame: frame, PassIndex: passIndex,
		Filter: filter,
	}
	return structToBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)) //nolint:gosec // safe struct access
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}

// scaledExtent applies a pass scale factor to an input extent, clamping
// to at least 1x1.
func scaledExtent(w, h int, scale float64) (int, int) {
	ow := int(float64(w)*scale + 0.5)
	oh := int(float64(h)*scale + 0.5)
	if ow < 1 {
		ow = 1
	}
	if oh < 1 {
		oh = 1
	}
	return ow, oh
}
