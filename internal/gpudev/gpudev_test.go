// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func adapterOfType(name string, dt gputypes.DeviceType) hal.ExposedAdapter {
	var a hal.ExposedAdapter
	a.Info.Name = name
	a.Info.DeviceType = dt
	return a
}

func TestPickAdapterPrefersDiscrete(t *testing.T) {
	adapters := []hal.ExposedAdapter{
		adapterOfType("cpu", gputypes.DeviceTypeCPU),
		adapterOfType("igpu", gputypes.DeviceTypeIntegratedGPU),
		adapterOfType("dgpu", gputypes.DeviceTypeDiscreteGPU),
	}
	if got := pickAdapter(adapters); got.Info.Name != "dgpu" {
		t.Errorf("pickAdapter() = %q, want dgpu", got.Info.Name)
	}
}

func TestPickAdapterFallsBackToIntegrated(t *testing.T) {
	adapters := []hal.ExposedAdapter{
		adapterOfType("cpu", gputypes.DeviceTypeCPU),
		adapterOfType("igpu", gputypes.DeviceTypeIntegratedGPU),
	}
	if got := pickAdapter(adapters); got.Info.Name != "igpu" {
		t.Errorf("pickAdapter() = %q, want igpu", got.Info.Name)
	}
}

func TestPickAdapterFirstWhenNoGPU(t *testing.T) {
	adapters := []hal.ExposedAdapter{
		adapterOfType("first", gputypes.DeviceTypeCPU),
		adapterOfType("second", gputypes.DeviceTypeCPU),
	}
	if got := pickAdapter(adapters); got.Info.Name != "first" {
		t.Errorf("pickAdapter() = %q, want first", got.Info.Name)
	}
}

// bareProvider implements DeviceHandle but not the HAL handle accessors.
type bareProvider struct{}

func (bareProvider) Device() gpucontext.Device   { return nil }
func (bareProvider) Queue() gpucontext.Queue     { return nil }
func (bareProvider) Adapter() gpucontext.Adapter { return nil }
func (bareProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}
func (bareProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

var _ gpucontext.DeviceProvider = bareProvider{}

func TestFromProviderErrors(t *testing.T) {
	if _, err := FromProvider(nil); err == nil {
		t.Error("FromProvider(nil) error = nil, want error")
	}
	if _, err := FromProvider(bareProvider{}); err == nil {
		t.Error("FromProvider(bareProvider) error = nil, want error")
	}
}

func TestInfoFromAdapter(t *testing.T) {
	tests := []struct {
		name     string
		in       gpucontext.AdapterInfo
		wantName string
		wantType gputypes.DeviceType
	}{
		{"discrete", gpucontext.AdapterInfo{Name: "RTX", Type: gpucontext.AdapterTypeDiscrete}, "RTX", gputypes.DeviceTypeDiscreteGPU},
		{"integrated", gpucontext.AdapterInfo{Name: "Iris", Type: gpucontext.AdapterTypeIntegrated}, "Iris", gputypes.DeviceTypeIntegratedGPU},
		{"software", gpucontext.AdapterInfo{Name: "llvmpipe", Type: gpucontext.AdapterTypeSoftware}, "llvmpipe", gputypes.DeviceTypeCPU},
		{"unnamed", gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}, "shared device", gputypes.DeviceTypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := infoFromAdapter(tt.in)
			if got.Name != tt.wantName || got.DeviceType != tt.wantType {
				t.Errorf("infoFromAdapter(%+v) = %+v, want {%s %v}", tt.in, got, tt.wantName, tt.wantType)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Name: "Test GPU", DeviceType: gputypes.DeviceTypeDiscreteGPU}
	if got := info.String(); got == "" {
		t.Error("Info.String() is empty")
	}
}
