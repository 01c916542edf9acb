// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpudev acquires a GPU device through the wgpu HAL.
//
// The chain either owns a device created here or adopts one shared by a
// host application via a gpucontext.DeviceProvider. Shared devices are
// never destroyed on Close.
package gpudev

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoGPU is returned when no usable GPU backend or adapter exists.
var ErrNoGPU = errors.New("gpudev: no GPU available")

// DeviceHandle provides GPU device access from a host application.
//
// Host applications (e.g., gogpu.App) implement DeviceHandle and pass it
// in, allowing the chain to use the shared GPU device instead of
// creating its own. DeviceHandle is an alias for
// gpucontext.DeviceProvider for compatibility with the gpucontext
// ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is the subset of providers that expose raw HAL handles.
// gogpu's context provider implements it.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Info describes the selected GPU adapter.
type Info struct {
	// Name is the adapter name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// DeviceType is the kind of adapter (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
}

// String returns a human-readable description of the adapter.
func (i Info) String() string {
	return fmt.Sprintf("%s (%v)", i.Name, i.DeviceType)
}

// GPU is an open HAL device with its submission queue.
type GPU struct {
	Device hal.Device
	Queue  hal.Queue
	Info   Info

	instance hal.Instance
	shared   bool // true when adopted from a host provider; don't destroy
}

// Acquire creates an instance on the Vulkan backend, picks an adapter
// (discrete preferred, then integrated, then whatever is first), and
// opens a device with default limits.
func Acquire() (*GPU, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not registered", ErrNoGPU)
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrNoGPU, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", ErrNoGPU)
	}

	selected := pickAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpudev: open device: %w", err)
	}

	return &GPU{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Info:     Info{Name: selected.Info.Name, DeviceType: selected.Info.DeviceType},
		instance: instance,
	}, nil
}

// pickAdapter prefers a discrete GPU, then an integrated one, then the
// first adapter enumerated.
func pickAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			return &adapters[i]
		}
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// FromProvider adopts a host-shared HAL device. The provider must expose
// raw HAL handles (HalDevice/HalQueue). The returned GPU is marked
// shared: Close releases nothing.
func FromProvider(p DeviceHandle) (*GPU, error) {
	if p == nil {
		return nil, errors.New("gpudev: nil device provider")
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, errors.New("gpudev: provider does not expose HAL handles")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("gpudev: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("gpudev: provider HalQueue is not hal.Queue")
	}
	return &GPU{
		Device: device,
		Queue:  queue,
		Info:   infoFromAdapter(p.AdapterInfo()),
		shared: true,
	}, nil
}

// infoFromAdapter maps provider adapter metadata onto Info.
func infoFromAdapter(ai gpucontext.AdapterInfo) Info {
	info := Info{Name: ai.Name}
	if info.Name == "" {
		info.Name = "shared device"
	}
	switch ai.Type {
	case gpucontext.AdapterTypeDiscrete:
		info.DeviceType = gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		info.DeviceType = gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		info.DeviceType = gputypes.DeviceTypeCPU
	default:
		info.DeviceType = gputypes.DeviceTypeOther
	}
	return info
}

// Shared reports whether the device is owned by a host application.
func (g *GPU) Shared() bool { return g.shared }

// Close destroys the device and instance when owned. Safe to call more
// than once.
func (g *GPU) Close() {
	if g.shared {
		g.Device = nil
		g.Queue = nil
		return
	}
	if g.Device != nil {
		g.Device.Destroy()
		g.Device = nil
	}
	if g.instance != nil {
		g.instance.Destroy()
		g.instance = nil
	}
	g.Queue = nil
}
