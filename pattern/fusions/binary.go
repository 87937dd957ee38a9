package fusions

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// RegisterBinary registers binary_fusion: a standalone elementwise binary
// op (Multiply, Divide, Maximum, Minimum) optionally followed by a single
// activation, mirroring the conv/matmul post-op patterns but for a bare
// binary op with no preceding compute-heavy producer. Priority 15, above
// eltwise and sum so it gets first look at its own binary op kinds (which
// sum_fusion and eltwise_fusion never match).
func RegisterBinary(reg *pattern.Registry) {
	reg.Register(&pattern.Pattern{
		Name:       "binary_fusion",
		Priority:   15,
		KernelKind: "binary",
		Match:      matchBinaryChain,
	})
}

func matchBinaryChain(g *iface.Graph, start iface.OpRef) ([]iface.OpRef, bool) {
	op := g.Op(start)
	if !isBinaryKind(op.Kind) {
		return nil, false
	}
	chain := []iface.OpRef{start}
	if next, ok := chainNext(g, op); ok && isEltwiseKind(g.Op(next).Kind) {
		chain = append(chain, next)
	}
	return chain, true
}

func isBinaryKind(kind string) bool {
	switch kind {
	case iface.OpMul, iface.OpDiv, iface.OpMax, iface.OpMin:
		return true
	default:
		return false
	}
}
