package pattern

import (
	"github.com/tponieck/autograph/iface"
)

// Run applies patterns, in order, to g: for each pattern, it repeatedly
// scans for a matching connected subgraph among not-yet-consumed ops,
// carving out a partition per match and marking the matched ops consumed so
// no later pattern claims them (spec.md §4.2). Matching is greedy and
// non-backtracking: once a pattern claims ops, that choice is final.
//
// backend is attached to every produced partition so the outer graph
// library can identify which backend to hand the partition back to.
func Run(g *iface.Graph, patterns []*Pattern, engine iface.EngineKind, backend iface.BackendHandle) ([]*iface.Partition, *iface.Status) {
	var partitions []*iface.Partition
	for _, p := range patterns {
		for {
			ops, ok := findOneMatch(g, p)
			if !ok {
				break
			}
			for _, ref := range ops {
				g.Ops[ref].Consumed = true
			}
			inputs, outputs := partitionBoundary(g, ops)
			part := iface.NewPartition(ops, inputs, outputs, engine, backend, p.KernelKind)
			partitions = append(partitions, part)
		}
	}
	return partitions, nil
}

// findOneMatch scans ops in graph order for the first unconsumed op at
// which p.Match succeeds, entirely over unconsumed ops.
func findOneMatch(g *iface.Graph, p *Pattern) ([]iface.OpRef, bool) {
	for i, op := range g.Ops {
		if op.Consumed {
			continue
		}
		ref := iface.OpRef(i)
		ops, ok := p.Match(g, ref)
		if !ok {
			continue
		}
		if anyConsumed(g, ops) {
			continue
		}
		return ops, true
	}
	return nil, false
}

func anyConsumed(g *iface.Graph, ops []iface.OpRef) bool {
	for _, ref := range ops {
		if g.Ops[ref].Consumed {
			return true
		}
	}
	return false
}

// partitionBoundary computes the partition's externally-facing inputs and
// outputs: an input is any value consumed inside the partition but produced
// outside it (or with no producer, i.e. a graph parameter); an output is any
// value produced inside the partition that has a consumer outside it, or no
// consumers at all (a graph sink).
func partitionBoundary(g *iface.Graph, ops []iface.OpRef) (inputs, outputs []iface.LogicalTensor) {
	inSet := make(map[iface.OpRef]bool, len(ops))
	for _, ref := range ops {
		inSet[ref] = true
	}

	seenIn := make(map[iface.ValueRef]bool)
	seenOut := make(map[iface.ValueRef]bool)
	for _, ref := range ops {
		op := g.Ops[ref]
		for _, vref := range op.Inputs {
			v := g.Values[vref]
			if v.Producer == iface.NoOp || !inSet[v.Producer] {
				if !seenIn[vref] {
					seenIn[vref] = true
					inputs = append(inputs, v.Tensor)
				}
			}
		}
		for _, vref := range op.Outputs {
			v := g.Values[vref]
			external := len(v.Consumers) == 0
			for _, consumer := range v.Consumers {
				if !inSet[consumer] {
					external = true
					break
				}
			}
			if external && !seenOut[vref] {
				seenOut[vref] = true
				outputs = append(outputs, v.Tensor)
			}
		}
	}
	return inputs, outputs
}
