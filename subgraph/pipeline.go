package subgraph

import "github.com/tponieck/autograph/iface"

// Pass transforms a Subgraph from one valid state to the next (spec.md
// GLOSSARY: "a function transforming a subgraph from one valid state to
// another").
type Pass func(*Subgraph) *iface.Status

// Visualizer is an optional diagnostic sink invoked between passes. It must
// not mutate sg; visualization is side-effect-free on the computation
// (spec.md §4.4).
type Visualizer interface {
	AfterPass(name string, sg *Subgraph)
}

// namedPass pairs a Pass with the name a Visualizer sees.
type namedPass struct {
	name string
	run  Pass
}

// Pipeline runs a fixed, ordered sequence of passes over one Subgraph. The
// ordering invariants from spec.md §4.4 (lower before fuse, fuse before
// layout_propagation, layout_propagation before memory_planning,
// memory_planning before compile_ops) are enforced by construction: callers
// build a Pipeline once, in order, rather than assembling passes at
// runtime.
type Pipeline struct {
	passes     []namedPass
	visualizer Visualizer
}

// NewPipeline builds a Pipeline running passes in the given order.
func NewPipeline(passes ...Pass) *Pipeline {
	p := &Pipeline{}
	names := []string{"lower_down", "fuse_to_primitive", "insert_reorders", "layout_propagation", "memory_planning", "compile_ops"}
	for i, run := range passes {
		name := "pass"
		if i < len(names) {
			name = names[i]
		}
		p.passes = append(p.passes, namedPass{name: name, run: run})
	}
	return p
}

// WithVisualizer attaches a diagnostic sink invoked after each pass.
func (p *Pipeline) WithVisualizer(v Visualizer) *Pipeline {
	p.visualizer = v
	return p
}

// Run executes every pass in order, short-circuiting on the first
// non-success status (spec.md §7: "the pipeline short-circuits on first
// non-success").
func (p *Pipeline) Run(sg *Subgraph) *iface.Status {
	for _, np := range p.passes {
		if status := np.run(sg); !status.OK() {
			return status
		}
		if p.visualizer != nil {
			p.visualizer.AfterPass(np.name, sg)
		}
	}
	return iface.Success()
}

// Canonical returns the full six-pass pipeline (spec.md §4.4's "canonical
// pipeline"), used by kernel.LargePartitionKernel and kernel.SingleOpKernel.
func Canonical() *Pipeline {
	return NewPipeline(LowerDown, FuseToPrimitive, InsertReorders, PropagateLayouts, PlanMemory, CompileOps)
}

// SumPipeline returns the five-pass pipeline original_source/kernels/
// sum.hpp's sum_t::compile_impl runs: lower_down, fuse_to_sum,
// layout_propagation, memory_planning, compile_ops. It omits
// insert_reorders, unlike Canonical, since a sum's operands are read in
// whatever layout they already carry (spec.md §6.5).
func SumPipeline() *Pipeline {
	return &Pipeline{passes: []namedPass{
		{name: "lower_down", run: LowerDown},
		{name: "fuse_to_sum", run: FuseToSum},
		{name: "layout_propagation", run: PropagateLayouts},
		{name: "memory_planning", run: PlanMemory},
		{name: "compile_ops", run: CompileOps},
	}}
}
