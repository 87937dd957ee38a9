package fusions

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

func leafValue(g *iface.Graph, id int64) iface.ValueRef {
	return g.AddValue(&iface.Value{Tensor: iface.LogicalTensor{ID: id, DType: dtypes.Float32}, Producer: iface.NoOp})
}

func addOp(g *iface.Graph, kind string, inputs ...iface.ValueRef) iface.ValueRef {
	out := g.AddValue(&iface.Value{Tensor: iface.LogicalTensor{DType: dtypes.Float32}})
	g.AddOp(&iface.Op{Kind: kind, Inputs: inputs, Outputs: []iface.ValueRef{out}})
	return out
}

// buildConvReluGraph reproduces spec.md scenario S2: relu(add(bias,
// conv(x, w))).
func buildConvReluGraph() *iface.Graph {
	g := iface.NewGraph()
	x := leafValue(g, 0)
	w := leafValue(g, 1)
	bias := leafValue(g, 2)
	convOut := addOp(g, iface.OpConvolution, x, w)
	biasOut := addOp(g, iface.OpBiasAdd, convOut, bias)
	addOp(g, iface.OpReLU, biasOut)
	return g
}

func TestConvPostOpsMatchesS2(t *testing.T) {
	g := buildConvReluGraph()
	reg := pattern.NewRegistry()
	RegisterAll(reg)

	partitions, status := pattern.Run(g, reg.Patterns(), iface.EngineCPU, nil)
	require.True(t, status.OK())
	require.Len(t, partitions, 1)
	assert.Len(t, partitions[0].Ops, 3, "conv, bias_add and relu all fused together")
	assert.Len(t, partitions[0].Inputs, 3, "x, w, bias")
	assert.Len(t, partitions[0].Outputs, 1)
}

// buildSumChainGraph reproduces spec.md scenario S4:
// add(add(add(a, b), c), d).
func buildSumChainGraph() *iface.Graph {
	g := iface.NewGraph()
	a := leafValue(g, 0)
	b := leafValue(g, 1)
	c := leafValue(g, 2)
	d := leafValue(g, 3)
	s1 := addOp(g, iface.OpAdd, a, b)
	s2 := addOp(g, iface.OpAdd, s1, c)
	addOp(g, iface.OpAdd, s2, d)
	return g
}

func TestSumFusionMatchesS4(t *testing.T) {
	g := buildSumChainGraph()
	reg := pattern.NewRegistry()
	RegisterAll(reg)

	partitions, status := pattern.Run(g, reg.Patterns(), iface.EngineCPU, nil)
	require.True(t, status.OK())
	require.Len(t, partitions, 1)
	assert.Len(t, partitions[0].Ops, 3, "all three adds fused into one n-ary sum")
	assert.Len(t, partitions[0].Inputs, 4, "a, b, c, d")
	assert.Len(t, partitions[0].Outputs, 1)
}

func TestConvBlockChainsTwoConvGroups(t *testing.T) {
	g := iface.NewGraph()
	x := leafValue(g, 0)
	w1 := leafValue(g, 1)
	b1 := leafValue(g, 2)
	w2 := leafValue(g, 3)
	b2 := leafValue(g, 4)

	conv1 := addOp(g, iface.OpConvolution, x, w1)
	bias1 := addOp(g, iface.OpBiasAdd, conv1, b1)
	relu1 := addOp(g, iface.OpReLU, bias1)
	conv2 := addOp(g, iface.OpConvolution, relu1, w2)
	bias2 := addOp(g, iface.OpBiasAdd, conv2, b2)
	addOp(g, iface.OpReLU, bias2)

	reg := pattern.NewRegistry()
	RegisterAll(reg)
	partitions, status := pattern.Run(g, reg.Patterns(), iface.EngineCPU, nil)
	require.True(t, status.OK())
	require.Len(t, partitions, 1, "both conv groups fuse into a single conv_block partition")
	assert.Len(t, partitions[0].Ops, 6)
}

func TestEltwiseFusionCatchesStandaloneActivation(t *testing.T) {
	g := iface.NewGraph()
	x := leafValue(g, 0)
	addOp(g, iface.OpSigmoid, x)

	reg := pattern.NewRegistry()
	RegisterAll(reg)
	partitions, status := pattern.Run(g, reg.Patterns(), iface.EngineCPU, nil)
	require.True(t, status.OK())
	require.Len(t, partitions, 1)
	assert.Len(t, partitions[0].Ops, 1)
}
