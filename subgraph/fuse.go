package subgraph

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/opset"
)

// FuseToPrimitive combines the ops of every kernel kind except "sum" (which
// SumKernel handles via FuseToSum instead, spec.md §6.5) into the fused
// primitive(s) the matching pattern anticipated: conv_post_ops collapses its
// whole chain into one op of the matching composite kind; conv_block folds
// separately within each of its two conv+bias+activation groups, since the
// primitive library compiles conv_block as two independent primitives
// chained by an internal value, not one primitive spanning both
// convolutions; a multi-op matmul or binary chain also folds into one op,
// which keeps its anchor op's kind (see compositeKind); single-op
// partitions (eltwise, single_op) are already minimal and pass through
// unchanged (spec.md §4.4, pass 2).
func FuseToPrimitive(sg *Subgraph) *iface.Status {
	if sg.kernelKind() == "sum" {
		return iface.Success()
	}
	return foldChain(sg)
}

// FuseToSum folds a chain of binary Add ops into a single n-ary sum op
// (spec.md scenario S4). It is a no-op outside the "sum" kernel kind so
// SumKernel's shorter pipeline can call it unconditionally.
func FuseToSum(sg *Subgraph) *iface.Status {
	if sg.kernelKind() != "sum" {
		return iface.Success()
	}
	return foldChain(sg)
}

func (sg *Subgraph) kernelKind() string {
	if len(sg.Ops) == 0 {
		return ""
	}
	return sg.Ops[0].KernelKind
}

// compositeKind picks the internal op kind a fully-folded group becomes.
// conv_block's two groups are each shaped exactly like a conv_post_ops
// chain, so they get the same composite kind; kernel kinds without a
// dedicated composite (matmul, binary) keep the anchor op's own kind: its
// schema already carries the semantics, and the absorbed post-ops are
// recorded as Fused for diagnostics only.
func compositeKind(kernelKind string, anchor opset.Kind) opset.Kind {
	switch kernelKind {
	case "sum":
		return opset.KindSumN
	case "conv_post_ops", "conv_block":
		return opset.KindConvPostOps
	default:
		return anchor
	}
}

// foldChain merges each fusible group of sg.Ops into one op apiece,
// recording the replaced kinds in Fused. A partition with a single fusible
// group (every kernel kind except conv_block) collapses to one op, exactly
// as before; conv_block's two conv+bias+activation groups fold
// independently, connected by whatever internal value the first group's
// output feeds into the second group's convolution, so PlanMemory and
// CompileOps still see two real ops to plan and compile across.
func foldChain(sg *Subgraph) *iface.Status {
	groups := foldGroups(sg)
	if len(groups) == len(sg.Ops) {
		return iface.Success() // already minimal: every group is a single op
	}

	kernelKind := sg.kernelKind()
	newOps := make([]*Op, 0, len(groups))
	oldToNew := make(map[int]int, len(sg.Ops))
	for newIdx, group := range groups {
		if len(group) == 1 {
			newOps = append(newOps, sg.Ops[group[0]])
		} else {
			newOps = append(newOps, sg.foldGroup(group, kernelKind))
		}
		for _, oldIdx := range group {
			oldToNew[oldIdx] = newIdx
		}
	}

	// Every op moved (or stayed) from its original index to its group's
	// position in newOps; remap every value's Producer/Consumers to match,
	// whether or not that value's group actually folded.
	for _, v := range sg.Values {
		if v.Producer != noOp {
			v.Producer = oldToNew[v.Producer]
		}
		if len(v.Consumers) == 0 {
			continue
		}
		remapped := make([]int, 0, len(v.Consumers))
		seen := make(map[int]bool, len(v.Consumers))
		for _, c := range v.Consumers {
			newC := oldToNew[c]
			if !seen[newC] {
				seen[newC] = true
				remapped = append(remapped, newC)
			}
		}
		v.Consumers = remapped
	}
	sg.Ops = newOps
	return iface.Success()
}

// foldGroups splits sg.Ops into the runs foldChain should fuse independently.
// Every kernel kind except conv_block has exactly one fusible group (its
// whole op list); conv_block starts a new group at each Convolution, since
// that is exactly where matchConvPostOps starts each of conv_block's two
// chained groups (pattern/fusions/convblock.go).
func foldGroups(sg *Subgraph) [][]int {
	if sg.kernelKind() != "conv_block" {
		all := make([]int, len(sg.Ops))
		for i := range sg.Ops {
			all[i] = i
		}
		return [][]int{all}
	}

	var groups [][]int
	var current []int
	for i, op := range sg.Ops {
		if op.Kind == opset.KindConvolution && len(current) > 0 {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, i)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// foldGroup merges the ops at the given original indices into one new Op.
// Inputs produced by another op in the same group are internal and dropped;
// inputs produced outside the group (an external value, or another group's
// output) stay as real inputs of the merged op.
func (sg *Subgraph) foldGroup(group []int, kernelKind string) *Op {
	inGroup := make(map[int]bool, len(group))
	for _, opIdx := range group {
		inGroup[opIdx] = true
	}

	fused := make([]opset.Kind, 0, len(group))
	attrs := make(map[string]iface.Attr)
	var mergedInputs []int
	seen := make(map[int]bool)
	for _, opIdx := range group {
		op := sg.Ops[opIdx]
		fused = append(fused, op.Kind)
		for name, v := range op.Attrs {
			if _, exists := attrs[name]; !exists {
				attrs[name] = v
			}
		}
		for _, in := range op.Inputs {
			if prod := sg.Values[in].Producer; prod != noOp && inGroup[prod] {
				continue // produced by another op in this same group: purely internal
			}
			if !seen[in] {
				seen[in] = true
				mergedInputs = append(mergedInputs, in)
			}
		}
	}
	mergedOutputs := append([]int(nil), sg.Ops[group[len(group)-1]].Outputs...)

	return &Op{
		Kind:       compositeKind(kernelKind, sg.Ops[group[0]].Kind),
		KernelKind: kernelKind,
		Attrs:      attrs,
		Inputs:     mergedInputs,
		Outputs:    mergedOutputs,
		Fused:      fused,
	}
}
