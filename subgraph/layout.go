package subgraph

import "github.com/tponieck/autograph/iface"

// PropagateLayouts walks the subgraph in topological order and assigns a
// concrete MemoryDescriptor to every value that doesn't already have one
// (spec.md §4.4, pass 4). Values InsertReorders already pinned are left
// untouched; everywhere else this backend assigns the natural row-major
// plain tag for the value's rank, the simplest legal choice a primitive
// library leaving the producer's output layout unspecified would itself be
// free to make.
//
// Every resolved descriptor is interned through sg.Layouts so its
// layoutid.ID is stable across the lifetime of the partition.
func PropagateLayouts(sg *Subgraph) *iface.Status {
	order, err := topoOrder(sg)
	if !err.OK() {
		return err
	}
	for _, opIdx := range order {
		op := sg.Ops[opIdx]
		for _, idx := range op.Inputs {
			if status := sg.resolveValue(idx); !status.OK() {
				return status
			}
		}
		for _, idx := range op.Outputs {
			if status := sg.resolveValue(idx); !status.OK() {
				return status
			}
		}
	}
	// External I/O values with no producer/consumer inside this partition
	// (degenerate single-value partitions) still need a descriptor.
	for _, idx := range sg.Inputs {
		if status := sg.resolveValue(idx); !status.OK() {
			return status
		}
	}
	for _, idx := range sg.Outputs {
		if status := sg.resolveValue(idx); !status.OK() {
			return status
		}
	}
	// Values no op references any more (intermediates a fusion folded away)
	// still get a descriptor, so every entry of sg.Values has one.
	for idx := range sg.Values {
		if status := sg.resolveValue(idx); !status.OK() {
			return status
		}
	}
	return iface.Success()
}

func (sg *Subgraph) resolveValue(idx int) *iface.Status {
	v := sg.Values[idx]
	if v.HasDesc {
		return iface.Success()
	}
	if sg.isExternalInput(idx) || sg.isExternalOutput(idx) {
		if desc, pinned := pinnedDescriptorFor(v.Tensor); pinned {
			id, status := sg.Layouts.Intern(desc)
			if !status.OK() {
				return status
			}
			v.Desc = desc
			v.LayoutID = id
			v.HasDesc = true
			v.Pinned = true
			return iface.Success()
		}
	}
	rank := len(v.Tensor.Shape.Dims)
	tag := NaturalTag(rank)
	if tag == iface.PlainTagUndef {
		return iface.Errorf(iface.CodeInternalError, "layout_propagation: no plain tag for rank %d", rank)
	}
	desc := iface.MemoryDescriptor{Dims: v.Tensor.Shape.Dims, DType: v.Tensor.DType, Kind: iface.FormatPlain, Tag: tag}
	id, status := sg.Layouts.Intern(desc)
	if !status.OK() {
		return status
	}
	v.Desc = desc
	v.LayoutID = id
	v.HasDesc = true
	return iface.Success()
}

// topoOrder returns sg.Ops's indices in producer-before-consumer order.
// Kahn's algorithm over the local, index-based op graph (mirrors
// iface.Graph.TopoOrder, but over Subgraph's own local indices).
func topoOrder(sg *Subgraph) ([]int, *iface.Status) {
	indegree := make([]int, len(sg.Ops))
	for i, op := range sg.Ops {
		for _, in := range op.Inputs {
			if sg.Values[in].Producer != noOp {
				indegree[i]++
			}
		}
	}
	var queue []int
	for i, d := range indegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	var order []int
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, out := range sg.Ops[i].Outputs {
			for _, consumer := range sg.Values[out].Consumers {
				indegree[consumer]--
				if indegree[consumer] == 0 {
					queue = append(queue, consumer)
				}
			}
		}
	}
	if len(order) != len(sg.Ops) {
		return nil, iface.Errorf(iface.CodeInvalidGraph, "layout_propagation: subgraph is not acyclic")
	}
	return order, iface.Success()
}
