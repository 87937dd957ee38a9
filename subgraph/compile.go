package subgraph

import (
	"github.com/pkg/errors"

	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/internal/except"
)

// CompileOps instantiates each op's backing primitive against the engine,
// in topological order, storing the resulting Executable on the Op and
// appending it to sg.Executables (spec.md §4.4, pass 6).
func CompileOps(sg *Subgraph) (status *iface.Status) {
	order, status := topoOrder(sg)
	if !status.OK() {
		return status
	}

	defer except.Catch(func(msg string) {
		status = iface.Errorf(iface.CodeInternalError, "compile_ops: %s", msg)
	})
	except.Assert(sg.EngineImpl != nil, "subgraph has no engine bound")

	sg.Executables = sg.Executables[:0]
	for _, opIdx := range order {
		op := sg.Ops[opIdx]
		spec := iface.PrimitiveSpec{
			Kind:    string(op.Kind),
			Inputs:  descsOf(sg, op.Inputs),
			Outputs: descsOf(sg, op.Outputs),
			Attrs:   op.Attrs,
		}
		exec, st := sg.EngineImpl.Compile(spec)
		if !st.OK() {
			return iface.Wrap(st.Code, errors.Wrapf(st, "compile_ops: op %q", op.Kind), "failed to compile op %q", op.Kind)
		}
		op.Exec = exec
		sg.Executables = append(sg.Executables, exec)
	}
	return iface.Success()
}

func descsOf(sg *Subgraph, valueIdxs []int) []iface.MemoryDescriptor {
	out := make([]iface.MemoryDescriptor, len(valueIdxs))
	for i, idx := range valueIdxs {
		out[i] = sg.Values[idx].Desc
	}
	return out
}
