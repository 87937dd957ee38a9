package iface

import "github.com/google/uuid"

// Policy is the partition-extraction policy requested by the caller
// (spec.md §3, §4.3).
type Policy int

const (
	PolicyFusion Policy = iota
	PolicyDebug
)

// EngineKind names the compute device family a partition/kernel targets.
type EngineKind int

const (
	EngineCPU EngineKind = iota
	EngineGPU
)

func (k EngineKind) String() string {
	if k == EngineGPU {
		return "gpu"
	}
	return "cpu"
}

// BackendHandle is the minimal identity a Partition needs to carry back to
// whoever produced it, without importing package backend (which in turn
// depends on pattern/pass/layoutid — importing it from iface would cycle).
type BackendHandle interface {
	Name() string
	Priority() float64
}

// Partition is a contiguous set of original ops chosen by the pass manager,
// plus the externally facing inputs/outputs and the target engine kind
// (spec.md §3).
type Partition struct {
	ID      uuid.UUID
	Ops     []OpRef
	Inputs  []LogicalTensor
	Outputs []LogicalTensor
	Engine  EngineKind
	Backend BackendHandle

	// KernelKind is the KernelKind of the pattern that matched this
	// partition, carried forward so whoever compiles it (kernel.Registry)
	// knows which Kernel specialization and subgraph pipeline to build
	// without re-matching (spec.md §4.2, §4.5).
	KernelKind string
}

// NewPartition allocates a Partition with a fresh ID.
func NewPartition(ops []OpRef, inputs, outputs []LogicalTensor, engine EngineKind, backend BackendHandle, kernelKind string) *Partition {
	return &Partition{
		ID:         uuid.New(),
		Ops:        append([]OpRef(nil), ops...),
		Inputs:     append([]LogicalTensor(nil), inputs...),
		Outputs:    append([]LogicalTensor(nil), outputs...),
		Engine:     engine,
		Backend:    backend,
		KernelKind: kernelKind,
	}
}
