package kernel

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/internal/except"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
	"github.com/tponieck/autograph/subgraph"
)

// base implements the machinery every Kernel specialization shares: running
// its Pipeline once at compile time, then at execute time acquiring a
// per-caller scratchpad from a sync.Pool and running every compiled op of
// the subgraph against it (one op for most fused partitions; a conv_block
// partition, or one with inserted reorders, has more). sync.Pool stands in for the
// thread-local execution-args cache original_source keeps
// (kernel_base_t/execution_args_set_t) — see DESIGN.md's Open Question 4.
type base struct {
	pipeline *subgraph.Pipeline
	sg       *subgraph.Subgraph
	argsPool sync.Pool
}

// argsSet is one pooled caller's scratchpad, sized once at first use and
// reused across every Execute call that pool slot serves.
type argsSet struct {
	scratch iface.Handle
}

// compile runs pipeline over part, building sg's IR via subgraph.FromPartition
// first. Every Kernel specialization's Compile method is a thin wrapper
// around this.
func (b *base) compile(pipeline *subgraph.Pipeline, g *iface.Graph, part *iface.Partition, kernelKind string, engine iface.Engine, backend iface.BackendHandle, layouts *layoutid.Manager, schemas *opset.Registry) *iface.Status {
	sg := subgraph.New(part.Engine, engine, backend, layouts, schemas)
	subgraph.FromPartition(g, part, kernelKind, sg)

	if status := pipeline.Run(sg); !status.OK() {
		return status
	}

	b.pipeline = pipeline
	b.sg = sg
	b.argsPool = sync.Pool{New: func() any { return b.newArgsSet() }}
	b.prepareInPlacePairs()
	return iface.Success()
}

// inPlaceCapable is an optional capability an iface.Executable may report:
// whether it can actually write its output over its sole input's buffer.
// Primitives that don't implement it are assumed capable, matching
// PlanMemory's own default assumption.
type inPlaceCapable interface {
	SupportsInPlace() bool
}

// prepareInPlacePairs is kernel_base_t::compile's second phase
// (prepare_inplace_pairs_impl in original_source): once CompileOps has
// produced real executables, drop any in-place pair whose compiled
// primitive declares it can't actually write over its input, giving the
// orphaned output a fresh slot at the end of the scratchpad instead of the
// one it no longer aliases.
func (b *base) prepareInPlacePairs() {
	if b.sg.Plan == nil {
		return
	}
	for outIdx := range b.sg.Plan.InPlacePairs {
		out := b.sg.Values[outIdx]
		exec := producerExec(b.sg, outIdx)
		if exec == nil {
			continue
		}
		capable, ok := exec.(inPlaceCapable)
		if !ok || capable.SupportsInPlace() {
			continue
		}
		delete(b.sg.Plan.InPlacePairs, outIdx)
		out.Offset = b.sg.Plan.ScratchSize
		out.Length = out.Desc.Size()
		b.sg.Plan.ScratchSize += out.Length
	}
}

func producerExec(sg *subgraph.Subgraph, valueIdx int) iface.Executable {
	prod := sg.Values[valueIdx].Producer
	if prod < 0 || prod >= len(sg.Ops) {
		return nil
	}
	return sg.Ops[prod].Exec
}

// constantCacheEnabled reports whether this kernel's compiled subgraph may
// promote constant inputs to the persistent region, checked at the call
// site (post-construction, once the engine is known) rather than baked in
// earlier (spec.md §5, §9).
func (b *base) constantCacheEnabled() bool {
	return b.sg != nil && b.sg.ConstantCacheOK
}

// newArgsSet allocates a scratchpad sized to b.sg.Plan.ScratchSize from the
// compiled engine's allocator. Called at most once per pool slot.
func (b *base) newArgsSet() *argsSet {
	set := &argsSet{}
	if b.sg.Plan == nil || b.sg.Plan.ScratchSize == 0 || b.sg.EngineImpl == nil {
		return set
	}
	alloc := b.sg.EngineImpl.Allocator()
	if alloc == nil {
		return set
	}
	if h, status := alloc.Allocate(b.sg.Plan.ScratchSize); status.OK() {
		set.scratch = h
	}
	return set
}

// execute binds inputs/outputs to the subgraph's external value slots, runs
// every compiled op in order, and returns the pooled argsSet when done.
//
// Bad caller input (wrong arity) is reported as an ordinary CodeInvalidArguments
// status. A failure that would instead mean this kernel's own compile output is
// internally inconsistent — a missing executable, an unallocated scratchpad a
// plan said it needed — is never a condition a correct compile could produce, so
// it is raised with except.Assert and converted to CodeInternalError at this
// function's boundary, per the compiler's "internal checks are assertions, not
// returned errors" rule.
func (b *base) execute(stream iface.Stream, inputs, outputs []iface.Tensor) (status *iface.Status) {
	if b.sg == nil {
		return iface.Errorf(iface.CodeInternalError, "kernel: Execute called before Compile")
	}
	if len(inputs) != len(b.sg.Inputs) {
		return iface.Errorf(iface.CodeInvalidArguments, "kernel: expected %d inputs, got %d", len(b.sg.Inputs), len(inputs))
	}
	if len(outputs) != len(b.sg.Outputs) {
		return iface.Errorf(iface.CodeInvalidArguments, "kernel: expected %d outputs, got %d", len(b.sg.Outputs), len(outputs))
	}

	defer except.Catch(func(msg string) {
		status = iface.Errorf(iface.CodeInternalError, "kernel: %s", msg)
	})

	set, _ := b.argsPool.Get().(*argsSet)
	defer b.argsPool.Put(set)
	except.Assert(set != nil, "argument-set pool returned a nil entry")
	if b.sg.Plan != nil && b.sg.Plan.ScratchSize > 0 {
		except.Assert(set.scratch.Base != nil, "scratchpad not allocated despite non-zero plan size")
	}

	bound := make(map[int]iface.Tensor, len(b.sg.Inputs)+len(b.sg.Outputs))
	for i, idx := range b.sg.Inputs {
		bound[idx] = inputs[i]
	}
	for i, idx := range b.sg.Outputs {
		bound[idx] = outputs[i]
	}

	tensorFor := func(idx int) iface.Tensor {
		if t, ok := bound[idx]; ok {
			return t
		}
		v := b.sg.Values[idx]
		return iface.Tensor{Logical: v.Tensor, Data: set.scratch.Offset(v.Offset, v.Length)}
	}

	for _, op := range b.sg.Ops {
		except.Assert(op.Exec != nil, fmt.Sprintf("op %q has no compiled executable", op.Kind))
		args := iface.ExecutionArgs{Scratchpad: set.scratch}
		for _, in := range op.Inputs {
			args.Inputs = append(args.Inputs, tensorFor(in))
		}
		for _, out := range op.Outputs {
			args.Outputs = append(args.Outputs, tensorFor(out))
		}
		if status := op.Exec.Run(stream, args); !status.OK() {
			return iface.Wrap(status.Code, errors.Wrapf(status, "kernel: op %q", op.Kind), "execute failed")
		}
	}
	return iface.Success()
}

// executeAsync submits execute to stream, chained after waitFor, when the
// bound engine advertises async support (spec.md §4.5, §9). It returns as
// soon as submission succeeds; execute's own status, once known, is only
// reachable through the failure log below, matching a real async device
// queue where a submit call can't return a result that doesn't exist yet.
func (b *base) executeAsync(stream iface.Stream, inputs, outputs []iface.Tensor, waitFor ...*iface.CompletionToken) (*iface.CompletionToken, *iface.Status) {
	if b.sg == nil {
		return nil, iface.Errorf(iface.CodeInternalError, "kernel: ExecuteAsync called before Compile")
	}
	if b.sg.EngineImpl == nil || !b.sg.EngineImpl.SupportsAsync() {
		return nil, iface.Errorf(iface.CodeUnimplemented, "kernel: engine does not support asynchronous execution")
	}

	token := stream.Submit(func() {
		if status := b.execute(stream, inputs, outputs); !status.OK() {
			klog.Errorf("kernel: async execute failed: %v", status)
		}
	}, waitFor...)
	return token, iface.Success()
}
