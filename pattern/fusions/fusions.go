// Package fusions supplies the concrete fusion patterns this backend
// registers, supplemented from original_source/autograph_backend.cpp's
// register_passes() pattern list (spec.md §4.2, §2's Pattern Registry
// component).
package fusions

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// RegisterAll registers every pattern this backend knows about into reg, in
// the same order original_source registers its pattern classes (order only
// matters for same-priority tie-breaks; Registry.Sort still runs after).
func RegisterAll(reg *pattern.Registry) {
	RegisterConvBlock(reg)
	RegisterConvPostOps(reg)
	RegisterMatMul(reg)
	RegisterBinary(reg)
	RegisterEltwise(reg)
	RegisterSum(reg)
	RegisterSingleOp(reg)
	reg.Sort()
}

// singleConsumer reports whether vref has exactly one consuming op, the
// condition under which two ops may be safely fused across it (fusing a
// value with more than one consumer would duplicate work or strand a
// consumer outside the fused partition).
func singleConsumer(g *iface.Graph, vref iface.ValueRef) bool {
	return len(g.Value(vref).Consumers) == 1
}

// chainNext returns the single op consuming op's sole output, if op has
// exactly one output and that output has exactly one consumer.
func chainNext(g *iface.Graph, op *iface.Op) (iface.OpRef, bool) {
	if len(op.Outputs) != 1 {
		return iface.NoOp, false
	}
	if !singleConsumer(g, op.Outputs[0]) {
		return iface.NoOp, false
	}
	return g.Value(op.Outputs[0]).Consumers[0], true
}

// isEltwiseKind reports whether kind is one of the unary activation kinds
// eligible to be absorbed as a fused post-op.
func isEltwiseKind(kind string) bool {
	switch kind {
	case iface.OpReLU, iface.OpSigmoid, iface.OpTanh, iface.OpGELU:
		return true
	default:
		return false
	}
}
