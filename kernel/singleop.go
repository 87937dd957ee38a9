package kernel

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
	"github.com/tponieck/autograph/subgraph"
)

// SingleOpKernel compiles one op in isolation, the debug-policy passthrough
// (spec.md §4.3's PolicyDebug, scenario S1). It still runs the full
// six-pass pipeline: a lone op still needs a resolved layout and a
// memory plan, even though FuseToPrimitive never has more than one op to
// fold.
type SingleOpKernel struct {
	base
}

// NewSingleOpKernel returns an uncompiled SingleOpKernel.
func NewSingleOpKernel() *SingleOpKernel { return &SingleOpKernel{} }

func (k *SingleOpKernel) Compile(g *iface.Graph, part *iface.Partition, engine iface.Engine, backend iface.BackendHandle, layouts *layoutid.Manager, schemas *opset.Registry) *iface.Status {
	return k.base.compile(subgraph.Canonical(), g, part, part.KernelKind, engine, backend, layouts, schemas)
}

func (k *SingleOpKernel) Execute(stream iface.Stream, inputs, outputs []iface.Tensor) *iface.Status {
	return k.base.execute(stream, inputs, outputs)
}

func (k *SingleOpKernel) ExecuteAsync(stream iface.Stream, inputs, outputs []iface.Tensor, waitFor ...*iface.CompletionToken) (*iface.CompletionToken, *iface.Status) {
	return k.base.executeAsync(stream, inputs, outputs, waitFor...)
}
