package kernel

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
	"github.com/tponieck/autograph/subgraph"
)

// LargePartitionKernel runs the full canonical pipeline (spec.md §4.4,
// scenario S2): lower_down, fuse_to_primitive, insert_reorders,
// layout_propagation, memory_planning, compile_ops. It is the general
// kernel kind for any partition whose fusion isn't specifically a sum
// (conv_post_ops, conv_block, matmul, binary, eltwise).
type LargePartitionKernel struct {
	base
}

// NewLargePartitionKernel returns an uncompiled LargePartitionKernel.
func NewLargePartitionKernel() *LargePartitionKernel { return &LargePartitionKernel{} }

func (k *LargePartitionKernel) Compile(g *iface.Graph, part *iface.Partition, engine iface.Engine, backend iface.BackendHandle, layouts *layoutid.Manager, schemas *opset.Registry) *iface.Status {
	return k.base.compile(subgraph.Canonical(), g, part, part.KernelKind, engine, backend, layouts, schemas)
}

func (k *LargePartitionKernel) Execute(stream iface.Stream, inputs, outputs []iface.Tensor) *iface.Status {
	return k.base.execute(stream, inputs, outputs)
}

func (k *LargePartitionKernel) ExecuteAsync(stream iface.Stream, inputs, outputs []iface.Tensor, waitFor ...*iface.CompletionToken) (*iface.CompletionToken, *iface.Status) {
	return k.base.executeAsync(stream, inputs, outputs, waitFor...)
}
