package iface

// GraphOpKind names of the generic ops the outer graph library hands the
// backend before lowering (spec.md §3: "the generic graph ops"). These are
// distinct from opset.Kind, which names the backend's *internal*
// post-lowering vocabulary; pattern.Pattern matches against these.
const (
	OpConvolution = "Convolution"
	OpMatMul      = "MatMul"
	OpBiasAdd     = "BiasAdd"
	OpAdd         = "Add"
	OpReLU        = "ReLU"
	OpSigmoid     = "Sigmoid"
	OpTanh        = "Tanh"
	OpGELU        = "GELU"
	OpPoolMax     = "MaxPool"
	OpPoolAvg     = "AvgPool"
	OpBatchNorm   = "BatchNormInference"
	OpLayerNorm   = "LayerNorm"
	OpSoftmax     = "SoftMax"
	OpQuantize    = "Quantize"
	OpDequantize  = "Dequantize"
	OpMul         = "Multiply"
	OpDiv         = "Divide"
	OpMax         = "Maximum"
	OpMin         = "Minimum"
)
