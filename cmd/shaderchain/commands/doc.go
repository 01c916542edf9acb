// Package commands defines the shaderchain CLI.
//
// Commands
//
//   - render     Render a filter chain over an image and emit a PNG thumbnail
//   - transpile  Compile a WGSL shader and dump the compiled source
//   - bench      Measure chain rendering throughput
//   - preset     Parse a preset file and print its resolved pass list
//
// Every command is a straight line: load the named files, hand them to
// the shaderchain/naga/wgpu stack, print the result. The first failure
// (no GPU adapter, unreadable image, shader compile error) aborts the
// command with a diagnostic on stderr and a non-zero exit code.
package commands
