package kernel

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
	"github.com/tponieck/autograph/subgraph"
)

// SumKernel fuses a chain of additions into one N-ary sum primitive
// (spec.md §4.5, scenario S4). It mirrors original_source/kernels/sum.hpp's
// sum_t::compile_impl, which runs lower_down, fuse_to_dnnl_sum,
// layout_propagation, memory_plan and compile_ops but skips
// insert_reorders: a sum's operands are always read in their existing
// layout, so there's nothing to reorder.
type SumKernel struct {
	base
}

// NewSumKernel returns an uncompiled SumKernel.
func NewSumKernel() *SumKernel { return &SumKernel{} }

func (k *SumKernel) Compile(g *iface.Graph, part *iface.Partition, engine iface.Engine, backend iface.BackendHandle, layouts *layoutid.Manager, schemas *opset.Registry) *iface.Status {
	return k.base.compile(subgraph.SumPipeline(), g, part, part.KernelKind, engine, backend, layouts, schemas)
}

func (k *SumKernel) Execute(stream iface.Stream, inputs, outputs []iface.Tensor) *iface.Status {
	return k.base.execute(stream, inputs, outputs)
}

func (k *SumKernel) ExecuteAsync(stream iface.Stream, inputs, outputs []iface.Tensor, waitFor ...*iface.CompletionToken) (*iface.CompletionToken, *iface.Status) {
	return k.base.executeAsync(stream, inputs, outputs, waitFor...)
}
