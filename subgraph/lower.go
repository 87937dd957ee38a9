package subgraph

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/opset"
)

// outerToInternal maps the outer graph library's generic op kind strings
// (iface.Op*) to this backend's internal vocabulary (opset.Kind). Every
// entry the pattern package can match against needs a home here, or
// LowerDown reports Unimplemented for it.
var outerToInternal = map[string]opset.Kind{
	iface.OpConvolution: opset.KindConvolution,
	iface.OpMatMul:      opset.KindMatMul,
	iface.OpBiasAdd:     opset.KindBiasAdd,
	iface.OpAdd:         opset.KindAdd,
	iface.OpReLU:        opset.KindReLU,
	iface.OpSigmoid:     opset.KindSigmoid,
	iface.OpTanh:        opset.KindTanh,
	iface.OpGELU:        opset.KindGELU,
	iface.OpPoolMax:     opset.KindPoolMax,
	iface.OpPoolAvg:     opset.KindPoolAvg,
	iface.OpBatchNorm:   opset.KindBatchNorm,
	iface.OpLayerNorm:   opset.KindLayerNorm,
	iface.OpSoftmax:     opset.KindSoftmax,
	iface.OpQuantize:    opset.KindQuantize,
	iface.OpDequantize:  opset.KindDequantize,
	iface.OpMul:         opset.KindMultiply,
	iface.OpDiv:         opset.KindDivide,
	iface.OpMax:         opset.KindMaximum,
	iface.OpMin:         opset.KindMinimum,
}

// LowerDown rewrites every op's Kind from the outer graph library's
// vocabulary to opset.Kind. After this pass, only internal op kinds appear
// on the subgraph (spec.md §4.4, pass 1).
func LowerDown(sg *Subgraph) *iface.Status {
	for _, op := range sg.Ops {
		internal, ok := outerToInternal[string(op.Kind)]
		if !ok {
			return iface.Errorf(iface.CodeUnimplemented, "lower_down: no internal op for outer kind %q", op.Kind)
		}
		if sg.Schemas != nil {
			if _, known := sg.Schemas.Lookup(internal); !known {
				return iface.Errorf(iface.CodeUnimplemented, "lower_down: internal kind %q has no schema", internal)
			}
		}
		op.Kind = internal
	}
	return iface.Success()
}
