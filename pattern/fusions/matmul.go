package fusions

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// RegisterMatMul registers matmul_fusion: MatMul optionally followed by a
// single-consumer BiasAdd, optionally followed by a single-consumer
// activation. Priority 18, below conv patterns (which claim Convolution
// producers first) but above the generic binary/eltwise/sum bands.
func RegisterMatMul(reg *pattern.Registry) {
	reg.Register(&pattern.Pattern{
		Name:       "matmul_fusion",
		Priority:   18,
		KernelKind: "matmul",
		Match:      matchMatMulChain,
	})
}

func matchMatMulChain(g *iface.Graph, start iface.OpRef) ([]iface.OpRef, bool) {
	op := g.Op(start)
	if op.Kind != iface.OpMatMul {
		return nil, false
	}
	chain := []iface.OpRef{start}

	next, ok := chainNext(g, op)
	if !ok {
		return chain, true
	}
	if nextOp := g.Op(next); nextOp.Kind == iface.OpBiasAdd {
		chain = append(chain, next)
		if next2, ok := chainNext(g, nextOp); ok && isEltwiseKind(g.Op(next2).Kind) {
			chain = append(chain, next2)
		}
		return chain, true
	}
	if isEltwiseKind(g.Op(next).Kind) {
		chain = append(chain, next)
	}
	return chain, true
}
