package shaderchain

import "github.com/gogpu/shaderchain/internal/gpudev"

// DeviceHandle provides GPU device access from a host application.
// See [WithDeviceProvider].
type DeviceHandle = gpudev.DeviceHandle

// Option configures a Chain during creation.
type Option func(*chainOptions)

// chainOptions holds optional configuration for Chain creation.
type chainOptions struct {
	provider DeviceHandle
	label    string
}

func defaultOptions() chainOptions {
	return chainOptions{
		provider: nil, // Chain acquires its own device if nil
		label:    "shaderchain",
	}
}

// WithDeviceProvider makes the chain use a GPU device shared by a host
// application instead of creating its own. The provider must expose raw
// HAL handles (gogpu's context provider does). A shared device is never
// destroyed by Close.
func WithDeviceProvider(p DeviceHandle) Option {
	return func(o *chainOptions) {
		o.provider = p
	}
}

// WithLabel sets the debug label used for the chain's GPU resources.
func WithLabel(label string) Option {
	return func(o *chainOptions) {
		if label != "" {
			o.label = label
		}
	}
}
