package iface

// Allocator is borrowed from the engine at compile time and must remain
// valid for the kernel's lifetime (spec.md §5).
type Allocator interface {
	// Allocate returns a handle to nbytes of device memory.
	Allocate(nbytes int64) (Handle, *Status)
	// Free releases a handle previously returned by Allocate.
	Free(Handle)
}

// Handle is an opaque memory handle understood by the primitive library:
// a device pointer, a buffer object, or (for the CPU reference engine) a
// plain byte slice. The core never interprets its bits.
type Handle struct {
	// Base, for CPU-like engines, is the backing byte slice. Other engine
	// kinds are expected to instead use Ptr/whatever native handle scheme
	// the primitive library provides, wrapped opaquely, but this core only
	// ships a CPU-like reference engine, so Base is the only field it
	// actually dereferences.
	Base []byte
}

// Offset returns a sub-handle view nbytes starting at byte offset off,
// used to rebind scratchpad slots (spec.md §4.5).
func (h Handle) Offset(off, nbytes int64) Handle {
	return Handle{Base: h.Base[off : off+nbytes]}
}

// Engine is a handle to a compute device plus its allocator (spec.md §6).
type Engine interface {
	Kind() EngineKind
	Allocator() Allocator
	// SupportsAsync reports whether ExecuteAsync is available on this
	// engine (spec.md §4.5).
	SupportsAsync() bool
	// RequiresConstantCacheDisabled reports the runtime-specific exception
	// from spec.md §5/§9: some accelerator runtimes must not cache constant
	// weights because freeing cached buffers at process exit is unsafe.
	RequiresConstantCacheDisabled() bool
	// Compile instantiates spec's backing primitive for this engine
	// (spec.md §4.4 compile_ops). The primitive library itself is out of
	// scope for this core (spec.md §1); this is the seam it plugs into.
	Compile(spec PrimitiveSpec) (Executable, *Status)
}

// PrimitiveSpec describes one internal op instance for the primitive
// library to compile: its internal kind, the resolved memory descriptor of
// every operand, and any attributes the primitive needs at construction
// time (spec.md §4.4, §4.5).
type PrimitiveSpec struct {
	Kind    string
	Inputs  []MemoryDescriptor
	Outputs []MemoryDescriptor
	Attrs   map[string]Attr
}

// ExecutionArgs binds concrete tensors to an Executable's argument slots,
// plus the scratchpad slice memory_planning carved out for it (spec.md
// §4.4's "Execution Args Set").
type ExecutionArgs struct {
	Inputs     []Tensor
	Outputs    []Tensor
	Scratchpad Handle
}

// Executable is a compiled single-op primitive, ready to run against a
// stream (GLOSSARY: "a compiled single-op primitive prepared for a
// specific engine").
type Executable interface {
	Run(stream Stream, args ExecutionArgs) *Status
}

// CompletionToken models a completion event for asynchronous execution
// (spec.md §9, Design Notes: "model as an opaque CompletionToken"). It is
// independent of any concrete async mechanism; Stream implementations that
// don't support async never need to produce one.
type CompletionToken struct {
	done chan struct{}
}

// NewCompletionToken returns a token that is not yet signaled.
func NewCompletionToken() *CompletionToken {
	return &CompletionToken{done: make(chan struct{})}
}

// Signal marks the token complete. Safe to call at most once.
func (t *CompletionToken) Signal() {
	close(t.done)
}

// Wait blocks until the token is signaled.
func (t *CompletionToken) Wait() {
	<-t.done
}

// Stream is an ordered submission queue bound to one engine (spec.md §3, §6).
type Stream interface {
	Engine() Engine
	// Submit enqueues fn for execution on the stream, returning a token
	// that is signaled once fn and everything it was chained after have
	// completed. waitFor may be empty for the first submission in a chain.
	Submit(fn func(), waitFor ...*CompletionToken) *CompletionToken
}

// Tensor is a caller-owned buffer paired with its logical tensor descriptor
// (spec.md §3, §6).
type Tensor struct {
	Logical LogicalTensor
	Data    Handle
}
