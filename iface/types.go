// Package iface holds the minimal surface of types the compilation core
// consumes from (and exposes back to) the outer graph library and the
// primitive library: logical tensors, memory descriptors, the op/value
// graph, partitions, engines, streams and the status taxonomy. None of this
// is the core itself — the core is layoutid/opset/pattern/pass/subgraph/
// kernel/backend — but the core cannot type-check without concrete
// definitions for what it borrows across those boundaries (spec.md §1, §3,
// §6).
package iface

import "github.com/gomlx/gopjrt/dtypes"

// UnknownDim marks a shape dimension whose size is not yet known.
const UnknownDim int64 = -1

// Shape describes a tensor's dimensions; some may be UnknownDim.
type Shape struct {
	Dims []int64
}

// IsFullyKnown reports whether every dimension is concrete.
func (s Shape) IsFullyKnown() bool {
	for _, d := range s.Dims {
		if d == UnknownDim {
			return false
		}
	}
	return true
}

// NumElements returns the element count, or -1 if the shape isn't fully known.
func (s Shape) NumElements() int64 {
	if !s.IsFullyKnown() {
		return -1
	}
	n := int64(1)
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// LayoutKind discriminates the three ways a LogicalTensor's layout may be
// expressed (spec.md §3, Logical Tensor).
type LayoutKind int

const (
	LayoutUnspecified LayoutKind = iota
	LayoutStrided
	LayoutOpaque
)

// Layout is a tagged union over the three layout kinds.
type Layout struct {
	Kind LayoutKind
	// Strides is populated when Kind == LayoutStrided.
	Strides []int64
	// OpaqueID is populated when Kind == LayoutOpaque; it is a layoutid.ID
	// reinterpreted as uint32 here to avoid an import cycle with layoutid
	// (layoutid.Manager itself deals in MemoryDescriptor, defined below).
	OpaqueID uint32
}

// Property marks whether a LogicalTensor is a runtime variable or a
// compile-time constant (spec.md §3).
type Property int

const (
	PropertyVariable Property = iota
	PropertyConstant
)

// LogicalTensor is the opaque tensor descriptor exchanged at graph
// boundaries. It is immutable once handed to the backend, except that
// Compile may fill previously-unknown fields on return (spec.md §3, §4.5).
type LogicalTensor struct {
	ID       int64
	DType    dtypes.DType
	Shape    Shape
	Layout   Layout
	Property Property
}

// PlainTag enumerates the well-known row-major-family plain formats, the Go
// equivalent of oneDNN's dnnl_format_tag_t for the common cases the debug
// layout-id bias scheme can reconstruct without interning (spec.md §4.1).
type PlainTag int

const (
	PlainTagUndef PlainTag = iota
	PlainTagA             // rank 1
	PlainTagAB            // row-major rank 2
	PlainTagBA            // column-major rank 2
	PlainTagABC           // row-major rank 3
	PlainTagACB
	PlainTagABCD // row-major rank 4 (NCHW-like)
	PlainTagACDB // channels-last rank 4 (NHWC-like)
	PlainTagCount
)

// FormatFlag carries the "extra flags" a memory descriptor may have that a
// plain tag alone cannot represent (spec.md §3: "scales or zero-point
// carriers").
type FormatFlag uint8

const (
	FlagNone         FormatFlag = 0
	FlagWithScales   FormatFlag = 1 << 0
	FlagWithZeroPts  FormatFlag = 1 << 1
)

// FormatKind discriminates a MemoryDescriptor's Format.
type FormatKind int

const (
	FormatPlain FormatKind = iota
	FormatBlockedOpaque
)

// BlockedFormat is an opaque, backend-specific blocked-layout tag. The core
// treats it as an opaque comparable value minted by the primitive library;
// it never interprets its bits.
type BlockedFormat struct {
	// Name identifies the blocked layout as reported by the primitive
	// library (e.g. "aBcd16b"); kept as a string since the primitive
	// library, not this core, owns the actual blocking scheme.
	Name string
}

// MemoryDescriptor is the concrete tensor descriptor understood by the
// primitive library (spec.md §3).
type MemoryDescriptor struct {
	Dims    []int64
	DType   dtypes.DType
	Kind    FormatKind
	Tag     PlainTag      // valid when Kind == FormatPlain
	Blocked BlockedFormat // valid when Kind == FormatBlockedOpaque
	Flags   FormatFlag
}

// Equal reports bit-exact equality, the equality oneDNN's memory::desc
// comparison provides and which layoutid.Manager relies on for interning
// injectivity (spec.md §3 invariant: "compare equal iff ... bit-exact").
func (m MemoryDescriptor) Equal(o MemoryDescriptor) bool {
	if m.DType != o.DType || m.Kind != o.Kind || m.Flags != o.Flags {
		return false
	}
	if len(m.Dims) != len(o.Dims) {
		return false
	}
	for i := range m.Dims {
		if m.Dims[i] != o.Dims[i] {
			return false
		}
	}
	switch m.Kind {
	case FormatPlain:
		return m.Tag == o.Tag
	case FormatBlockedOpaque:
		return m.Blocked == o.Blocked
	default:
		return false
	}
}

// Size returns the byte size implied by Dims and DType, assuming a dense
// plain layout (get_mem_size in spec.md §6). Blocked/opaque formats may pad,
// but the padding factor is the primitive library's concern; the core
// reports the dense lower bound, which is what backend.GetMemSize exposes.
func (m MemoryDescriptor) Size() int64 {
	n := int64(1)
	for _, d := range m.Dims {
		n *= d
	}
	return n * int64(m.DType.Size())
}
