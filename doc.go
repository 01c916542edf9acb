// Package shaderchain applies multi-pass WGSL filter chains to images on
// the GPU.
//
// A chain is described by a preset (see the preset package): an ordered
// list of WGSL compute shaders, each with an output scale factor. The
// chain compiles every pass through the wgpu HAL (naga underneath) and
// renders frames synchronously: pixels are uploaded, run through each
// pipeline in order, and read back after a fence wait. One frame is in
// flight at a time.
//
// Basic usage:
//
//	p, err := preset.Load("crt.yaml")
//	if err != nil { ... }
//	c, err := shaderchain.New(p)
//	if err != nil { ... }
//	defer c.Close()
//
//	out, err := c.Render(src, 0)
//
// By default shaderchain creates its own Vulkan device. Host
// applications that already own a GPU device can share it with
// [WithDeviceProvider]; a shared device is never destroyed by Close.
//
// shaderchain produces no log output by default; see [SetLogger].
package shaderchain
