// Package subgraph implements the per-partition transformation pipeline:
// lowering, fusion, reorder insertion, layout propagation, memory planning
// and op compilation (spec.md §4.4).
package subgraph

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
)

// Op is one op owned by a Subgraph. Before LowerDown runs, Kind holds the
// original outer graph op kind string (spec.md §3); LowerDown rewrites it
// to an opset.Kind and every later pass only ever sees internal kinds.
type Op struct {
	Kind       opset.Kind
	KernelKind string // the fusion pattern's KernelKind, carried from partition.Ops
	Attrs      map[string]iface.Attr
	Inputs     []int
	Outputs    []int

	// Fused holds the original ops this Op replaced, in the order they were
	// fused, for diagnostics (empty unless FuseToPrimitive/FuseToSum merged
	// more than one Op into this one).
	Fused []opset.Kind

	// Exec is filled by CompileOps.
	Exec iface.Executable
}

// Value is one edge owned by a Subgraph.
type Value struct {
	Tensor    iface.LogicalTensor
	Desc      iface.MemoryDescriptor // filled by PropagateLayouts
	LayoutID  layoutid.ID
	HasDesc   bool
	Producer  int // op index, -1 for an external input
	Consumers []int

	Pinned     bool // layout fixed before layout_propagation runs
	IsConstant bool

	// Offset/Length describe this value's slot in the subgraph's
	// scratchpad once PlanMemory has run; external I/O values are never
	// assigned a slot (Offset and Length stay 0).
	Offset int64
	Length int64
}

const noOp = -1

// Subgraph is the mutable per-partition IR the pipeline transforms
// (spec.md GLOSSARY).
type Subgraph struct {
	Ops    []*Op
	Values []*Value

	// Inputs/Outputs are, in order, the value indices the partition
	// exposes externally.
	Inputs  []int
	Outputs []int

	Engine           iface.EngineKind
	EngineImpl       iface.Engine
	Backend          iface.BackendHandle
	Layouts          *layoutid.Manager
	Schemas          *opset.Registry
	UseBlockedLayout bool
	ConstantCacheOK  bool

	Plan        *MemoryPlan
	Executables []iface.Executable
}

// New returns an empty Subgraph wired to the given collaborators. Callers
// populate Ops/Values/Inputs/Outputs (typically via FromPartition) before
// running a Pipeline over it.
func New(engine iface.EngineKind, engineImpl iface.Engine, backend iface.BackendHandle, layouts *layoutid.Manager, schemas *opset.Registry) *Subgraph {
	return &Subgraph{
		Engine:          engine,
		EngineImpl:      engineImpl,
		Backend:         backend,
		Layouts:         layouts,
		Schemas:         schemas,
		ConstantCacheOK: engineImpl == nil || !engineImpl.RequiresConstantCacheDisabled(),
	}
}

// FromPartition builds the initial (pre-lowering) IR for part out of g: one
// Op per g.Op(ref) in part.Ops, values copied 1:1 with fresh local indices,
// external I/O recorded from part.Inputs/part.Outputs.
func FromPartition(g *iface.Graph, part *iface.Partition, kernelKind string, sg *Subgraph) {
	valueIndex := make(map[iface.ValueRef]int)

	localValue := func(vref iface.ValueRef) int {
		if idx, ok := valueIndex[vref]; ok {
			return idx
		}
		v := g.Value(vref)
		idx := len(sg.Values)
		// Producer stays noOp (external input) unless the owning op is also
		// part of this partition, in which case that op's own pass over its
		// Outputs below overwrites this, regardless of visit order.
		sg.Values = append(sg.Values, &Value{
			Tensor:     v.Tensor,
			Producer:   noOp,
			IsConstant: v.Tensor.Property == iface.PropertyConstant,
		})
		valueIndex[vref] = idx
		return idx
	}

	for _, ref := range part.Ops {
		op := g.Op(ref)
		inputs := make([]int, len(op.Inputs))
		for i, vref := range op.Inputs {
			inputs[i] = localValue(vref)
			sg.Values[inputs[i]].Consumers = append(sg.Values[inputs[i]].Consumers, len(sg.Ops))
		}
		outputs := make([]int, len(op.Outputs))
		for i, vref := range op.Outputs {
			outputs[i] = localValue(vref)
			sg.Values[outputs[i]].Producer = len(sg.Ops)
		}
		sg.Ops = append(sg.Ops, &Op{
			Kind:       opset.Kind(op.Kind),
			KernelKind: kernelKind,
			Attrs:      op.Attrs,
			Inputs:     inputs,
			Outputs:    outputs,
		})
	}

	for _, t := range part.Inputs {
		sg.Inputs = append(sg.Inputs, findByTensorID(sg.Values, t.ID))
	}
	for _, t := range part.Outputs {
		sg.Outputs = append(sg.Outputs, findByTensorID(sg.Values, t.ID))
	}
}

func findByTensorID(values []*Value, id int64) int {
	for i, v := range values {
		if v.Tensor.ID == id {
			return i
		}
	}
	return noOp
}

// isExternalInput reports whether value index idx is one of the
// partition's ordered external inputs.
func (sg *Subgraph) isExternalInput(idx int) bool {
	for _, in := range sg.Inputs {
		if in == idx {
			return true
		}
	}
	return false
}

func (sg *Subgraph) isExternalOutput(idx int) bool {
	for _, out := range sg.Outputs {
		if out == idx {
			return true
		}
	}
	return false
}
