// Package backend implements the process-wide facade the outer graph
// library talks to: a singleton owning the layout-id manager, pattern
// registry and op schema registry, exposing the virtual surface spec.md §4.6
// names (pass registry access, layout interning, tensor size/equality, and
// engine-kind support) plus a small process registry so more than one
// backend implementation could in principle coexist (spec.md §6, modeled on
// `backends.Register`/`backends.New` in the teacher's root `backends`
// package).
package backend

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/kernel"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
	"github.com/tponieck/autograph/pass"
	"github.com/tponieck/autograph/pattern"
	"github.com/tponieck/autograph/pattern/fusions"
	"github.com/tponieck/autograph/subgraph"
)

// name is this backend's identity in the process registry: the key this
// package's init passes to Register, and what Name() returns.
const name = "autograph"

// priority is compared with other registered backends by the outer
// registry when more than one claims the same op; higher wins (spec.md
// §4.6). This is the only backend in this module, so any positive value
// works; picked to sit above a typical reference/fallback backend's
// default of 0.
const priority = 10.0

// Backend is the process-wide facade over this module's compilation core.
// It owns every registry a partition-extraction or kernel-compile call
// needs and satisfies iface.BackendHandle.
type Backend struct {
	Layouts  *layoutid.Manager
	Patterns *pattern.Registry
	Schemas  *opset.Registry
	Kernels  *kernel.Registry
	passes   *pass.Manager
}

// New builds a fully-wired Backend: a pattern registry populated with every
// fusion pattern in pattern/fusions, the default internal op schema set,
// an empty layout-id manager, and the default kernel-kind registry.
func New() *Backend {
	patterns := pattern.NewRegistry()
	fusions.RegisterAll(patterns)

	b := &Backend{
		Layouts:  layoutid.NewManager(),
		Patterns: patterns,
		Schemas:  opset.NewRegistry(),
		Kernels:  kernel.Default(),
	}
	b.passes = pass.NewManager(patterns)
	return b
}

// Name implements iface.BackendHandle.
func (b *Backend) Name() string { return name }

// Priority implements iface.BackendHandle (spec.md §4.6).
func (b *Backend) Priority() float64 { return priority }

// SupportEngineKind reports whether kind is one this backend can target.
// This module only ships a CPU reference engine (spec.md §1: the primitive
// library itself is out of scope), so GPU is declared unsupported rather
// than silently accepted and left to fail later at kernel compile.
func (b *Backend) SupportEngineKind(kind iface.EngineKind) bool {
	return kind == iface.EngineCPU
}

// GetPartitions extracts partitions from g under policy, targeting engine
// (spec.md §4.3, §6). It is this Backend's own identity that gets attached
// to every returned partition (Partition.Backend), so a partition can be
// traced back to the backend that produced it.
func (b *Backend) GetPartitions(g *iface.Graph, policy iface.Policy, engine iface.EngineKind) ([]*iface.Partition, *iface.Status) {
	if !b.SupportEngineKind(engine) {
		return nil, iface.Errorf(iface.CodeUnimplemented, "backend: engine kind %v not supported", engine)
	}
	return b.passes.GetPartitions(g, policy, engine, b)
}

// CompareLogicalTensor reports whether a and b describe the same tensor,
// delegating to memory-descriptor arithmetic (spec.md §6) over
// descriptorOf: same dtype, same dims, and the same layout, where a tensor
// with an opaque layout-id known to this backend uses its interned
// descriptor and every other tensor uses the natural row-major tag for its
// rank. The strides of a strided layout are not consulted.
func (b *Backend) CompareLogicalTensor(a, other iface.LogicalTensor) bool {
	return b.descriptorOf(a).Equal(b.descriptorOf(other))
}

// GetMemSize returns the dense byte size a logical tensor implies (spec.md
// §6's get_mem_size), delegating to MemoryDescriptor.Size.
func (b *Backend) GetMemSize(t iface.LogicalTensor) int64 {
	return b.descriptorOf(t).Size()
}

// InternLayout interns d into the layout-id manager, returning its stable
// id (spec.md §6's intern_layout).
func (b *Backend) InternLayout(d iface.MemoryDescriptor) (layoutid.ID, *iface.Status) {
	return b.Layouts.Intern(d)
}

// LookupLayout resolves a previously interned id back to its descriptor
// (spec.md §6's lookup_layout).
func (b *Backend) LookupLayout(id layoutid.ID) (iface.MemoryDescriptor, bool) {
	return b.Layouts.Lookup(id)
}

// descriptorOf builds the MemoryDescriptor a LogicalTensor implies: its
// backend-assigned layout-id descriptor if it carries one (an opaque
// blocked format this backend itself minted), else the natural row-major
// tag for its rank — the same default subgraph.PropagateLayouts assigns,
// so a tensor this backend never lowered still compares consistently
// against one that has been (spec.md §6's compare_logical_tensor).
func (b *Backend) descriptorOf(t iface.LogicalTensor) iface.MemoryDescriptor {
	if t.Layout.Kind == iface.LayoutOpaque {
		if desc, ok := b.LookupLayout(layoutid.ID(t.Layout.OpaqueID)); ok {
			return desc
		}
	}
	return iface.MemoryDescriptor{
		Dims:  t.Shape.Dims,
		DType: t.DType,
		Kind:  iface.FormatPlain,
		Tag:   subgraph.NaturalTag(len(t.Shape.Dims)),
	}
}
