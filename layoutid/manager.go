// Package layoutid interns opaque memory descriptors and hands back stable,
// small integer identifiers the outer graph library can embed in a logical
// tensor in place of a full descriptor (spec.md §4.1).
package layoutid

import (
	"sync"

	"github.com/tponieck/autograph/iface"
)

// ID is a layout-id: a small unsigned integer that compares equal to
// another ID iff the underlying memory descriptors compare equal
// (bit-exact, not merely shape+dtype).
type ID uint32

// tagBiasEnabled is flipped on by manager_debug.go's init when this module
// is built with the autograph_layout_debug build tag (spec.md §4.1: "Debug
// tag-biased variant (enabled by a build-time flag)").
var tagBiasEnabled = false

// tagBias is the constant below which an id directly encodes a PlainTag
// instead of indexing into the interning vector (mirrors oneDNN's LAST_TAG
// in original_source's dnnl_layout_id_manager_t).
const tagBias = ID(iface.PlainTagCount)

// Manager interns iface.MemoryDescriptor values. All state is guarded by a
// single mutex; both Intern and Lookup acquire it. Contention is acceptable
// because interning only happens at compile time, never on the execute hot
// path (spec.md §4.1).
type Manager struct {
	mu    sync.Mutex
	descs []iface.MemoryDescriptor
}

// NewManager returns an empty layout-id manager.
func NewManager() *Manager {
	return &Manager{}
}

// Intern returns the existing id for d if an equal descriptor is already
// present, otherwise it appends d and returns the new id. Ids are dense
// indices into an internally grown vector and are never reused.
//
// When built with the autograph_layout_debug tag, ids below tagBias
// directly encode a well-known plain format tag and are never stored in the
// vector; the vector path is only used when the tag-only encoding would be
// lossy (unknown tag, or extra flags the tag can't express).
func (m *Manager) Intern(d iface.MemoryDescriptor) (ID, *iface.Status) {
	if tagBiasEnabled {
		if id, ok := m.internTagBiased(d); ok {
			return id, nil
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.descs {
		if existing.Equal(d) {
			return ID(i) + m.vectorBias(), nil
		}
	}
	m.descs = append(m.descs, d)
	return ID(len(m.descs)-1) + m.vectorBias(), nil
}

// vectorBias returns tagBias when the debug scheme is active, else 0, so
// vector-backed ids never collide with the directly-encoded tag ids.
func (m *Manager) vectorBias() ID {
	if tagBiasEnabled {
		return tagBias
	}
	return 0
}

// internTagBiased attempts the lossless direct encoding described above; ok
// is false when the descriptor must fall back to vector interning (via the
// caller's subsequent general path).
func (m *Manager) internTagBiased(d iface.MemoryDescriptor) (ID, bool) {
	if d.Kind != iface.FormatPlain {
		return 0, false
	}
	if d.Tag <= iface.PlainTagUndef || d.Tag >= iface.PlainTagCount {
		return 0, false
	}
	if d.Flags != iface.FlagNone {
		return 0, false
	}
	// Reconstructing dims+dtype+tag alone must reproduce d exactly for the
	// direct encoding to be lossless.
	reconstructed := iface.MemoryDescriptor{Dims: d.Dims, DType: d.DType, Kind: iface.FormatPlain, Tag: d.Tag}
	if !reconstructed.Equal(d) {
		return 0, false
	}
	return ID(d.Tag), true
}

// Lookup returns the descriptor previously interned under id, or ok=false
// if id was never minted. When the debug tag-biased scheme is active, ids
// below tagBias directly encode a plain tag rather than a full descriptor
// (the tag alone can't carry dims/dtype) and are reported not-present here,
// matching original_source's dnnl_layout_id_manager_t::get_mem_desc, whose
// unsigned subtraction of LAST_TAG underflows for those ids.
func (m *Manager) Lookup(id ID) (iface.MemoryDescriptor, bool) {
	bias := m.vectorBias()
	if id < bias {
		return iface.MemoryDescriptor{}, false
	}
	idx := int(id - bias)
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= len(m.descs) {
		return iface.MemoryDescriptor{}, false
	}
	return m.descs[idx], true
}

// Len returns the number of descriptors currently interned. Useful for
// tests and diagnostics; not part of the spec's public contract.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.descs)
}
