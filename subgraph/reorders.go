package subgraph

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/opset"
)

// InsertReorders inserts explicit KindReorder ops where a value's layout is
// already pinned (an external input/output carrying a caller-specified
// strided layout) but disagrees with the natural plain layout this backend
// otherwise assigns during PropagateLayouts (spec.md §4.4, pass 3; spec.md:
// "where an external input/output has a user-specified layout, it is pinned
// and reorders are inserted instead").
//
// This runs before PropagateLayouts: it only ever acts on layouts already
// known ahead of time (from the outer graph library), never on layouts
// PropagateLayouts itself is about to invent. PropagateLayouts inserts no
// reorders of its own: it gives every value not pinned here the natural
// plain tag for its rank.
func InsertReorders(sg *Subgraph) *iface.Status {
	for _, idx := range sg.Inputs {
		if status := sg.pinInputIfNeeded(idx); !status.OK() {
			return status
		}
	}
	for _, idx := range sg.Outputs {
		if status := sg.pinOutputIfNeeded(idx); !status.OK() {
			return status
		}
	}
	return iface.Success()
}

func (sg *Subgraph) pinInputIfNeeded(idx int) *iface.Status {
	v := sg.Values[idx]
	pinnedDesc, pinned := pinnedDescriptorFor(v.Tensor)
	if !pinned {
		return iface.Success()
	}
	natural := NaturalTag(len(v.Tensor.Shape.Dims))
	if pinnedDesc.Tag == natural {
		v.Desc = pinnedDesc
		v.HasDesc = true
		v.Pinned = true
		return iface.Success()
	}
	naturalDesc := iface.MemoryDescriptor{Dims: v.Tensor.Shape.Dims, DType: v.Tensor.DType, Kind: iface.FormatPlain, Tag: natural}
	return sg.insertReorderBefore(idx, pinnedDesc, naturalDesc)
}

func (sg *Subgraph) pinOutputIfNeeded(idx int) *iface.Status {
	v := sg.Values[idx]
	pinnedDesc, pinned := pinnedDescriptorFor(v.Tensor)
	if !pinned {
		return iface.Success()
	}
	natural := NaturalTag(len(v.Tensor.Shape.Dims))
	if pinnedDesc.Tag == natural {
		v.Desc = pinnedDesc
		v.HasDesc = true
		v.Pinned = true
		return iface.Success()
	}
	naturalDesc := iface.MemoryDescriptor{Dims: v.Tensor.Shape.Dims, DType: v.Tensor.DType, Kind: iface.FormatPlain, Tag: natural}
	return sg.insertReorderAfter(idx, pinnedDesc, naturalDesc)
}

// insertReorderBefore splices a KindReorder op between value idx's current
// consumers and idx itself, so consumers see the reordered value instead.
// The original value idx keeps origDesc, its pinned, caller-specified
// descriptor; the new value carries newDesc (this backend's natural layout)
// and is what every op actually consumes.
func (sg *Subgraph) insertReorderBefore(idx int, origDesc, newDesc iface.MemoryDescriptor) *iface.Status {
	orig := sg.Values[idx]
	orig.Pinned = true
	orig.Desc = origDesc
	orig.HasDesc = true

	reordered := &Value{Tensor: orig.Tensor, Desc: newDesc, HasDesc: true, Pinned: true, Producer: len(sg.Ops)}
	newIdx := len(sg.Values)
	sg.Values = append(sg.Values, reordered)

	reorderOp := &Op{Kind: opset.KindReorder, KernelKind: sg.kernelKind(), Inputs: []int{idx}, Outputs: []int{newIdx}}
	reorderRef := len(sg.Ops)
	sg.Ops = append(sg.Ops, reorderOp)

	for _, consumerIdx := range orig.Consumers {
		if consumerIdx == reorderRef {
			continue
		}
		op := sg.Ops[consumerIdx]
		for i, in := range op.Inputs {
			if in == idx {
				op.Inputs[i] = newIdx
			}
		}
		reordered.Consumers = append(reordered.Consumers, consumerIdx)
	}
	orig.Consumers = []int{reorderRef}
	return iface.Success()
}

// insertReorderAfter splices a KindReorder op between whatever op inside this
// partition produces value idx (the partition's pinned, caller-specified
// output) and idx itself: the producer is redirected to write into a fresh
// internal value in this backend's natural layout, and the reorder op
// converts that into idx's pinned layout. idx keeps its external identity;
// only its producer and descriptor change.
func (sg *Subgraph) insertReorderAfter(idx int, origDesc, newDesc iface.MemoryDescriptor) *iface.Status {
	orig := sg.Values[idx]
	producerIdx := orig.Producer
	if producerIdx == noOp {
		// Nothing inside this partition computes idx (a pass-through
		// output); there is no producer to redirect into a natural-layout
		// value, so idx just keeps its own pinned descriptor.
		orig.Pinned = true
		orig.Desc = origDesc
		orig.HasDesc = true
		return iface.Success()
	}

	computed := &Value{Tensor: orig.Tensor, Desc: newDesc, HasDesc: true, Producer: producerIdx}
	computedIdx := len(sg.Values)
	sg.Values = append(sg.Values, computed)

	producer := sg.Ops[producerIdx]
	for i, out := range producer.Outputs {
		if out == idx {
			producer.Outputs[i] = computedIdx
		}
	}

	reorderRef := len(sg.Ops)
	computed.Consumers = []int{reorderRef}
	sg.Ops = append(sg.Ops, &Op{Kind: opset.KindReorder, KernelKind: sg.kernelKind(), Inputs: []int{computedIdx}, Outputs: []int{idx}})

	orig.Producer = reorderRef
	orig.Pinned = true
	orig.Desc = origDesc
	orig.HasDesc = true
	return iface.Success()
}

// NaturalTag picks this backend's default row-major plain tag for rank.
func NaturalTag(rank int) iface.PlainTag {
	switch rank {
	case 1:
		return iface.PlainTagA
	case 2:
		return iface.PlainTagAB
	case 3:
		return iface.PlainTagABC
	case 4:
		return iface.PlainTagABCD
	default:
		return iface.PlainTagUndef
	}
}

// plainTagOrders maps a recognized PlainTag to the physical storage order of
// its logical axes, outermost to innermost — the Go equivalent of oneDNN's
// plain format tag letters (axis 0 is 'a', axis 1 is 'b', and so on).
var plainTagOrders = map[iface.PlainTag][]int{
	iface.PlainTagA:    {0},
	iface.PlainTagAB:   {0, 1},
	iface.PlainTagBA:   {1, 0},
	iface.PlainTagABC:  {0, 1, 2},
	iface.PlainTagACB:  {0, 2, 1},
	iface.PlainTagABCD: {0, 1, 2, 3},
	iface.PlainTagACDB: {0, 2, 3, 1},
}

// tagForStrides reports the PlainTag whose physical axis order produces
// exactly the given dense strides for dims, if one of the tags this backend
// recognizes matches.
func tagForStrides(dims, strides []int64) (iface.PlainTag, bool) {
	if len(strides) != len(dims) {
		return iface.PlainTagUndef, false
	}
	for tag, order := range plainTagOrders {
		if len(order) != len(dims) {
			continue
		}
		want := int64(1)
		matched := true
		for i := len(order) - 1; i >= 0; i-- {
			axis := order[i]
			if strides[axis] != want {
				matched = false
				break
			}
			want *= dims[axis]
		}
		if matched {
			return tag, true
		}
	}
	return iface.PlainTagUndef, false
}

// pinnedDescriptorFor reports the MemoryDescriptor a caller-specified strided
// layout implies, and whether t carries one at all. A strided layout this
// backend can't match to any tag it recognizes still reports ok=true, with
// Tag left as PlainTagUndef: it is still a pinned, externally-owned layout
// that must not be silently overwritten by PropagateLayouts's natural
// default, even though this backend has no name for it.
func pinnedDescriptorFor(t iface.LogicalTensor) (iface.MemoryDescriptor, bool) {
	if t.Layout.Kind != iface.LayoutStrided {
		return iface.MemoryDescriptor{}, false
	}
	tag, _ := tagForStrides(t.Shape.Dims, t.Layout.Strides)
	return iface.MemoryDescriptor{Dims: t.Shape.Dims, DType: t.DType, Kind: iface.FormatPlain, Tag: tag}, true
}
