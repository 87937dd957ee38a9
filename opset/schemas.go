package opset

import "github.com/gomlx/gopjrt/dtypes"

// floatDTypes is the set of dtypes compute-heavy internal ops support,
// matching the float-only subset of backends/simplego/capabilities.go's
// Capabilities.DTypes in the teacher.
func floatDTypes() map[dtypes.DType]bool {
	return map[dtypes.DType]bool{
		dtypes.Float32:  true,
		dtypes.Float64:  true,
		dtypes.BFloat16: true,
	}
}

// numericDTypes adds the integer types, for ops like Add that are equally
// valid over integers.
func numericDTypes() map[dtypes.DType]bool {
	m := floatDTypes()
	for _, d := range []dtypes.DType{dtypes.Int8, dtypes.Int16, dtypes.Int32, dtypes.Int64} {
		m[d] = true
	}
	return m
}

// DefaultSchemas returns the internal op vocabulary this backend can lower
// graphs into and compile, supplemented from original_source's opset
// (autograph_opset.hpp's registered schema list, named there
// conv/matmul/eltwise/pool/batchnorm/layernorm/softmax/quantize/reorder)
// beyond the handful spec.md calls out by name (convolution, bias-add,
// relu, sum) to give every pattern in pattern/fusions a matching internal
// kind to rewrite into.
func DefaultSchemas() []Schema {
	return []Schema{
		{Kind: KindConvolution, Arity: fixed(2, 1), DTypes: floatDTypes(), Attrs: map[string]bool{"strides": true, "padding": true}},
		{Kind: KindMatMul, Arity: fixed(2, 1), DTypes: floatDTypes()},
		{Kind: KindBiasAdd, Arity: fixed(2, 1), DTypes: numericDTypes()},
		{Kind: KindAdd, Arity: fixed(2, 1), DTypes: numericDTypes()},
		{Kind: KindSumN, Arity: Arity{MinInputs: 2, MaxInputs: -1, MinOutputs: 1, MaxOutputs: 1}, DTypes: numericDTypes()},
		{Kind: KindReLU, Arity: fixed(1, 1), DTypes: floatDTypes()},
		{Kind: KindSigmoid, Arity: fixed(1, 1), DTypes: floatDTypes()},
		{Kind: KindGELU, Arity: fixed(1, 1), DTypes: floatDTypes()},
		{Kind: KindTanh, Arity: fixed(1, 1), DTypes: floatDTypes()},
		{Kind: KindPoolMax, Arity: fixed(1, 1), DTypes: floatDTypes(), Attrs: map[string]bool{"window": true, "strides": true}},
		{Kind: KindPoolAvg, Arity: fixed(1, 1), DTypes: floatDTypes(), Attrs: map[string]bool{"window": true, "strides": true}},
		{Kind: KindBatchNorm, Arity: Arity{MinInputs: 5, MaxInputs: 5, MinOutputs: 1, MaxOutputs: 1}, DTypes: floatDTypes()},
		{Kind: KindLayerNorm, Arity: Arity{MinInputs: 3, MaxInputs: 3, MinOutputs: 1, MaxOutputs: 1}, DTypes: floatDTypes()},
		{Kind: KindSoftmax, Arity: fixed(1, 1), DTypes: floatDTypes(), Attrs: map[string]bool{"axis": true}},
		{Kind: KindQuantize, Arity: fixed(1, 1), DTypes: numericDTypes()},
		{Kind: KindDequantize, Arity: fixed(1, 1), DTypes: numericDTypes()},
		{Kind: KindReorder, Arity: fixed(1, 1), DTypes: numericDTypes()},
		{Kind: KindConvPostOps, Arity: Arity{MinInputs: 2, MaxInputs: -1, MinOutputs: 1, MaxOutputs: 1}, DTypes: floatDTypes()},
		{Kind: KindMultiply, Arity: fixed(2, 1), DTypes: numericDTypes()},
		{Kind: KindDivide, Arity: fixed(2, 1), DTypes: numericDTypes()},
		{Kind: KindMaximum, Arity: fixed(2, 1), DTypes: numericDTypes()},
		{Kind: KindMinimum, Arity: fixed(2, 1), DTypes: numericDTypes()},
	}
}
