package subgraph

import "github.com/tponieck/autograph/iface"

// MemoryPlan is the result of PlanMemory: every internal temporary's slot
// in a single scratchpad, the declared in-place pairs, and the size of a
// separate persistent region for promoted constants (spec.md §4.4's
// "Memory planning detail").
type MemoryPlan struct {
	ScratchSize int64
	ConstSize   int64

	// InPlacePairs maps an output value index to the input value index
	// whose buffer it reuses; such outputs are never given their own
	// scratch slot.
	InPlacePairs map[int]int
}

type freeSlot struct {
	offset, length int64
}

// PlanMemory computes lifetimes over the topological execution order,
// assigns scratch offsets via a first-fit free list (preferring the most
// recently released slot of sufficient size), records in-place pairs, and
// promotes constant inputs to a persistent region when the backend's
// constant cache is enabled (spec.md §4.4, pass 5).
func PlanMemory(sg *Subgraph) *iface.Status {
	order, status := topoOrder(sg)
	if !status.OK() {
		return status
	}
	pos := make(map[int]int, len(order))
	for i, opIdx := range order {
		pos[opIdx] = i
	}

	plan := &MemoryPlan{InPlacePairs: make(map[int]int)}
	external := make(map[int]bool, len(sg.Inputs)+len(sg.Outputs))
	for _, idx := range sg.Inputs {
		external[idx] = true
	}
	for _, idx := range sg.Outputs {
		external[idx] = true
	}

	lastUse := valueLifetimes(sg, pos)

	var free []freeSlot
	slotOf := make(map[int]freeSlot)

	release := func(step int) {
		for idx, last := range lastUse {
			if last == step && !external[idx] && slotOf[idx] != (freeSlot{}) {
				free = append([]freeSlot{slotOf[idx]}, free...) // most-recently-released first
			}
		}
	}

	for step, opIdx := range order {
		release(step - 1)
		op := sg.Ops[opIdx]

		if inPlaceOut, inPlaceIn, ok := inPlaceCandidate(sg, op, lastUse, pos[opIdx], external); ok {
			plan.InPlacePairs[inPlaceOut] = inPlaceIn
		}

		for _, outIdx := range op.Outputs {
			if external[outIdx] {
				continue
			}
			if inIdx, isInPlace := plan.InPlacePairs[outIdx]; isInPlace {
				v := sg.Values[outIdx]
				in := sg.Values[inIdx]
				v.Offset, v.Length = in.Offset, in.Length
				// The alias now owns the slot; transfer release
				// responsibility to outIdx's lifetime instead of inIdx's,
				// so the slot isn't freed out from under the alias.
				if s, ok := slotOf[inIdx]; ok {
					slotOf[outIdx] = s
					delete(slotOf, inIdx)
				}
				continue
			}
			v := sg.Values[outIdx]
			length := v.Desc.Size()

			if v.IsConstant && sg.ConstantCacheOK {
				v.Offset = plan.ConstSize
				v.Length = length
				plan.ConstSize += length
				continue
			}

			slot, idx := firstFit(free, length)
			if idx >= 0 {
				free = append(free[:idx], free[idx+1:]...)
			} else {
				slot = freeSlot{offset: plan.ScratchSize, length: length}
				plan.ScratchSize += length
			}
			v.Offset = slot.offset
			v.Length = slot.length
			slotOf[outIdx] = slot
		}
	}
	sg.Plan = plan
	return iface.Success()
}

// valueLifetimes returns, for every value, the executable step (position in
// topo order) of its last use: the last consumer's step, or its own
// defining step if it has no consumers within the subgraph.
func valueLifetimes(sg *Subgraph, pos map[int]int) map[int]int {
	lastUse := make(map[int]int, len(sg.Values))
	for i, v := range sg.Values {
		last := 0
		if v.Producer != noOp {
			last = pos[v.Producer]
		}
		for _, consumer := range v.Consumers {
			if p := pos[consumer]; p > last {
				last = p
			}
		}
		lastUse[i] = last
	}
	return lastUse
}

// inPlaceCandidate reports whether op's sole output may reuse its sole
// input's buffer: the op has exactly one input and one output, that input
// has this op as its only consumer (so no other op still needs the
// original contents), both the input and the output are internal
// temporaries (not caller-owned external values, which have no scratch slot
// to share), and the input's lifetime ends at this very step (spec.md: "the
// input's lifetime ends at this executable").
func inPlaceCandidate(sg *Subgraph, op *Op, lastUse map[int]int, step int, external map[int]bool) (outIdx, inIdx int, ok bool) {
	if len(op.Inputs) != 1 || len(op.Outputs) != 1 {
		return 0, 0, false
	}
	in := op.Inputs[0]
	inVal := sg.Values[in]
	if external[in] || external[op.Outputs[0]] || lastUse[in] != step || len(inVal.Consumers) != 1 {
		return 0, 0, false
	}
	if inVal.IsConstant && sg.ConstantCacheOK {
		return 0, 0, false // constants live in a separate persistent region
	}
	return op.Outputs[0], in, true
}

// firstFit scans free for the first slot of length >= need, returning its
// index, or -1 if none fits.
func firstFit(free []freeSlot, need int64) (freeSlot, int) {
	for i, s := range free {
		if s.length >= need {
			return s, i
		}
	}
	return freeSlot{}, -1
}
