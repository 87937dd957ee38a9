package fusions

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// RegisterSum registers sum_fusion: a left-leaning chain of binary Add ops,
// add(add(add(a, b), c), d), folded into one n-ary sum kernel invocation
// (spec.md scenario S4; original_source/kernels/sum.hpp takes an arbitrary
// number of inputs for exactly this reason). Priority 10 sits in the normal
// fusion band.
func RegisterSum(reg *pattern.Registry) {
	reg.Register(&pattern.Pattern{
		Name:       "sum_fusion",
		Priority:   10,
		KernelKind: "sum",
		Match:      matchSumChain,
	})
}

func matchSumChain(g *iface.Graph, start iface.OpRef) ([]iface.OpRef, bool) {
	op := g.Op(start)
	if op.Kind != iface.OpAdd || len(op.Outputs) != 1 {
		return nil, false
	}
	// Only match at the top of a chain: if this op's output feeds another
	// Add through a single-consumer link, that higher Add is the correct
	// anchor and will be visited later in graph order.
	out := g.Value(op.Outputs[0])
	if len(out.Consumers) == 1 && g.Op(out.Consumers[0]).Kind == iface.OpAdd {
		return nil, false
	}

	var chain []iface.OpRef
	cur := start
	for {
		chain = append(chain, cur)
		curOp := g.Op(cur)
		if len(curOp.Inputs) == 0 {
			break
		}
		lhs := g.Value(curOp.Inputs[0])
		if lhs.Producer == iface.NoOp || g.Op(lhs.Producer).Kind != iface.OpAdd {
			break
		}
		if !singleConsumer(g, curOp.Inputs[0]) {
			break
		}
		cur = lhs.Producer
	}
	if len(chain) < 2 {
		// A single Add has nothing to gain from an n-ary sum kernel; leave
		// it for eltwise/binary/single_op.
		return nil, false
	}
	return chain, true
}
