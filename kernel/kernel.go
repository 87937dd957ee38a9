// Package kernel implements the compiled kernel lifecycle: compile a
// partition into an executable pipeline, then execute (or asynchronously
// execute) it against concrete tensors on an engine (spec.md §4.5).
package kernel

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
)

// Kernel is the contract every fused or single-op kernel implements
// (spec.md §4.5). ExecuteAsync is only meaningful when the bound engine's
// SupportsAsync() is true; kernels built over an engine that doesn't
// support it return CodeUnimplemented from ExecuteAsync.
type Kernel interface {
	// Compile runs this kernel's pipeline over the partition, producing
	// executables for every op. It must be called exactly once, before any
	// Execute/ExecuteAsync call.
	Compile(g *iface.Graph, part *iface.Partition, engine iface.Engine, backend iface.BackendHandle, layouts *layoutid.Manager, schemas *opset.Registry) *iface.Status

	// Execute runs the compiled kernel synchronously against inputs and
	// outputs, ordered exactly as the originating partition's
	// Inputs/Outputs (spec.md §3, §4.5). Safe to call concurrently from
	// many threads provided each call supplies distinct tensor buffers.
	Execute(stream iface.Stream, inputs, outputs []iface.Tensor) *iface.Status

	// ExecuteAsync submits the kernel's work to stream without blocking,
	// returning a token signaled once execution completes (spec.md §9,
	// Design Notes: "opaque CompletionToken").
	ExecuteAsync(stream iface.Stream, inputs, outputs []iface.Tensor, waitFor ...*iface.CompletionToken) (*iface.CompletionToken, *iface.Status)
}
