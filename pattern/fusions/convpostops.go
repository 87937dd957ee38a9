package fusions

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// RegisterConvPostOps registers conv_post_ops_fusion: a Convolution, its
// bias add, and a trailing activation, each linked by a single-consumer
// edge, folded into one fused-post-ops kernel invocation
// (spec.md scenario S2: relu(add(bias, conv(x, w)))). Priority 22 puts it
// in the large band alongside conv_block.
func RegisterConvPostOps(reg *pattern.Registry) {
	reg.Register(&pattern.Pattern{
		Name:       "conv_post_ops_fusion",
		Priority:   22,
		KernelKind: "conv_post_ops",
		Match:      matchConvPostOps,
	})
}

// matchConvPostOps walks forward from a Convolution op through an optional
// single-consumer BiasAdd and an optional single-consumer activation,
// returning as much of that chain as is actually present.
func matchConvPostOps(g *iface.Graph, start iface.OpRef) ([]iface.OpRef, bool) {
	op := g.Op(start)
	if op.Kind != iface.OpConvolution {
		return nil, false
	}
	chain := []iface.OpRef{start}

	next, ok := chainNext(g, op)
	if !ok {
		return chain, true
	}
	nextOp := g.Op(next)
	if nextOp.Kind == iface.OpBiasAdd {
		chain = append(chain, next)
		if next2, ok := chainNext(g, nextOp); ok && isEltwiseKind(g.Op(next2).Kind) {
			chain = append(chain, next2)
		}
		return chain, true
	}
	if isEltwiseKind(nextOp.Kind) {
		chain = append(chain, next)
	}
	return chain, true
}
