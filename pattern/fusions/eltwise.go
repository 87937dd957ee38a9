package fusions

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// RegisterEltwise registers eltwise_fusion: a standalone unary activation
// (ReLU, Sigmoid, Tanh, GELU) that didn't get absorbed as a post-op of a
// preceding convolution or matmul. Priority 12 so conv_post_ops and
// matmul_fusion (which also try to claim these ops as post-ops) run first.
func RegisterEltwise(reg *pattern.Registry) {
	reg.Register(&pattern.Pattern{
		Name:       "eltwise_fusion",
		Priority:   12,
		KernelKind: "eltwise",
		Match: func(g *iface.Graph, start iface.OpRef) ([]iface.OpRef, bool) {
			op := g.Op(start)
			if !isEltwiseKind(op.Kind) {
				return nil, false
			}
			return []iface.OpRef{start}, true
		},
	})
}
