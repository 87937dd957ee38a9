// Package opset declares the backend's internal op vocabulary: the
// post-lowering/post-fusion op kinds the backend can actually execute
// (spec.md §2, Op Schema Registry). It is intentionally small and static;
// nothing here code-generates bindings to an external compiler's op set —
// that's a generator concern the pack's `internal/cmd/*_generator` tools
// handle for the teacher's XLA surface and has no equivalent in this core
// (see DESIGN.md, "dropped teacher dependencies").
package opset

import "github.com/gomlx/gopjrt/dtypes"

// Kind names an internal op after lowering. Generic graph op kinds (as they
// arrive from the outer graph library, e.g. "Convolution", "BiasAdd",
// "ReLU") are rewritten by subgraph.LowerDown into one of these.
type Kind string

const (
	KindConvolution     Kind = "convolution"
	KindMatMul          Kind = "matmul"
	KindBiasAdd         Kind = "bias_add"
	KindAdd             Kind = "add"
	KindSumN            Kind = "sum_n" // n-ary sum, produced by fuse_to_sum
	KindReLU            Kind = "relu"
	KindSigmoid         Kind = "sigmoid"
	KindGELU            Kind = "gelu"
	KindTanh            Kind = "tanh"
	KindPoolMax         Kind = "pool_max"
	KindPoolAvg         Kind = "pool_avg"
	KindBatchNorm       Kind = "batch_norm"
	KindLayerNorm       Kind = "layer_norm"
	KindSoftmax         Kind = "softmax"
	KindQuantize        Kind = "quantize"
	KindDequantize      Kind = "dequantize"
	KindReorder         Kind = "reorder" // explicit layout conversion, spec.md §4.4 insert_reorders
	// KindConvPostOps also covers each conv+bias+activation group of a
	// conv_block partition; conv_block never gets a composite kind of its
	// own, since it compiles to two independent conv_post_ops primitives
	// chained by an internal value, not one opaque multi-conv primitive.
	KindConvPostOps Kind = "conv_post_ops"
	KindMultiply    Kind = "multiply"
	KindDivide      Kind = "divide"
	KindMaximum     Kind = "maximum"
	KindMinimum     Kind = "minimum"
)

// Arity describes how many inputs/outputs a Kind accepts. Max == -1 means
// unbounded (e.g. the n-ary sum).
type Arity struct {
	MinInputs, MaxInputs   int
	MinOutputs, MaxOutputs int
}

func fixed(in, out int) Arity {
	return Arity{MinInputs: in, MaxInputs: in, MinOutputs: out, MaxOutputs: out}
}

// Schema declares one internal op kind's contract: arity and the dtypes it
// accepts (spec.md's "internal op vocabulary the backend can actually
// execute").
type Schema struct {
	Kind    Kind
	Arity   Arity
	DTypes  map[dtypes.DType]bool
	Attrs   map[string]bool // required attribute names
}

// Registry is the set of known internal op schemas.
type Registry struct {
	schemas map[Kind]Schema
}

// NewRegistry returns a registry pre-populated with DefaultSchemas.
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[Kind]Schema)}
	for _, s := range DefaultSchemas() {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a schema.
func (r *Registry) Register(s Schema) {
	r.schemas[s.Kind] = s
}

// Lookup returns the schema for kind, if known.
func (r *Registry) Lookup(kind Kind) (Schema, bool) {
	s, ok := r.schemas[kind]
	return s, ok
}

// SupportsDType reports whether kind accepts dtype, per its schema. Unknown
// kinds never support anything.
func (r *Registry) SupportsDType(kind Kind, dtype dtypes.DType) bool {
	s, ok := r.schemas[kind]
	if !ok {
		return false
	}
	return s.DTypes[dtype]
}

// ValidateArity reports whether numInputs/numOutputs are within kind's
// declared arity.
func (r *Registry) ValidateArity(kind Kind, numInputs, numOutputs int) bool {
	s, ok := r.schemas[kind]
	if !ok {
		return false
	}
	a := s.Arity
	if numInputs < a.MinInputs || (a.MaxInputs >= 0 && numInputs > a.MaxInputs) {
		return false
	}
	if numOutputs < a.MinOutputs || (a.MaxOutputs >= 0 && numOutputs > a.MaxOutputs) {
		return false
	}
	return true
}
