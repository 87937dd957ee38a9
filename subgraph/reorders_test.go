package subgraph

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
)

// buildPinnedReluSubgraph builds a single-op in -> relu -> out subgraph
// whose external input and output carry the given layouts, mirroring
// buildLinearSubgraph's direct-construction style (memplan_test.go) rather
// than going through FromPartition, since these tests only care about
// InsertReorders/PropagateLayouts behavior on already-known external
// layouts.
func buildPinnedReluSubgraph(inLayout, outLayout iface.Layout) *Subgraph {
	sg := New(iface.EngineCPU, nil, nil, layoutid.NewManager(), opset.NewRegistry())
	dims := []int64{2, 3}

	sg.Values = []*Value{
		{Tensor: iface.LogicalTensor{DType: dtypes.Float32, Shape: iface.Shape{Dims: dims}, Layout: inLayout}, Producer: noOp},
		{Tensor: iface.LogicalTensor{DType: dtypes.Float32, Shape: iface.Shape{Dims: dims}, Layout: outLayout}, Producer: 0},
	}
	sg.Values[0].Consumers = []int{0}

	sg.Ops = []*Op{
		{Kind: opset.KindReLU, KernelKind: "single_op", Inputs: []int{0}, Outputs: []int{1}},
	}
	sg.Inputs = []int{0}
	sg.Outputs = []int{1}
	return sg
}

func TestInsertReordersLeavesUnspecifiedLayoutsUntouched(t *testing.T) {
	sg := buildPinnedReluSubgraph(iface.Layout{}, iface.Layout{})

	require.True(t, InsertReorders(sg).OK())
	assert.Len(t, sg.Ops, 1, "no reorder needed when neither input nor output carries a pinned layout")
	assert.False(t, sg.Values[0].Pinned)
	assert.False(t, sg.Values[1].Pinned)
}

func TestInsertReordersLeavesNaturalInputUntouched(t *testing.T) {
	// dims {2,3}, row-major (AB) strides: this already matches the natural
	// tag PropagateLayouts would pick, so no reorder is needed, only pinning.
	natural := iface.Layout{Kind: iface.LayoutStrided, Strides: []int64{3, 1}}
	sg := buildPinnedReluSubgraph(natural, iface.Layout{})

	require.True(t, InsertReorders(sg).OK())
	assert.Len(t, sg.Ops, 1, "natural input layout needs no reorder")
	assert.True(t, sg.Values[0].Pinned)
	assert.True(t, sg.Values[0].HasDesc)
	assert.Equal(t, iface.PlainTagAB, sg.Values[0].Desc.Tag)

	require.True(t, PropagateLayouts(sg).OK())
	assert.Equal(t, iface.PlainTagAB, sg.Values[0].Desc.Tag, "PropagateLayouts must not overwrite a pinned descriptor")
}

func TestInsertReordersPinsInputWithRecognizedNonNaturalLayout(t *testing.T) {
	// dims {2,3}, column-major (BA) strides: recognized, but disagrees with
	// the natural row-major tag, so a reorder op must be spliced in.
	colMajor := iface.Layout{Kind: iface.LayoutStrided, Strides: []int64{1, 2}}
	sg := buildPinnedReluSubgraph(colMajor, iface.Layout{})

	require.True(t, InsertReorders(sg).OK())
	require.Len(t, sg.Ops, 2, "a reorder op is inserted between the pinned input and its consumer")

	reorderOp := sg.Ops[1]
	assert.Equal(t, opset.KindReorder, reorderOp.Kind)
	assert.Equal(t, []int{0}, reorderOp.Inputs)
	require.Len(t, reorderOp.Outputs, 1)
	reorderedIdx := reorderOp.Outputs[0]

	// the original relu op now consumes the reordered value, not the pinned one.
	assert.Equal(t, []int{reorderedIdx}, sg.Ops[0].Inputs)

	orig := sg.Values[0]
	assert.True(t, orig.Pinned)
	assert.True(t, orig.HasDesc)
	assert.Equal(t, iface.PlainTagBA, orig.Desc.Tag, "original value keeps its caller-specified layout")
	assert.Equal(t, []int{1}, orig.Consumers, "original value's only consumer is now the reorder op")

	reordered := sg.Values[reorderedIdx]
	assert.Equal(t, iface.PlainTagAB, reordered.Desc.Tag, "reorder op produces this backend's natural layout")

	require.True(t, PropagateLayouts(sg).OK())
	assert.Equal(t, iface.PlainTagBA, orig.Desc.Tag, "PropagateLayouts must not overwrite the pinned descriptor")
}

func TestInsertReordersPinsOutputWithRecognizedNonNaturalLayout(t *testing.T) {
	colMajor := iface.Layout{Kind: iface.LayoutStrided, Strides: []int64{1, 2}}
	sg := buildPinnedReluSubgraph(iface.Layout{}, colMajor)

	require.True(t, InsertReorders(sg).OK())
	require.Len(t, sg.Ops, 2, "a reorder op is inserted between the relu's internal result and the pinned output")

	reluOp := sg.Ops[0]
	require.Len(t, reluOp.Outputs, 1)
	computedIdx := reluOp.Outputs[0]
	assert.NotEqual(t, 1, computedIdx, "relu no longer writes directly into the pinned output slot")

	reorderOp := sg.Ops[1]
	assert.Equal(t, opset.KindReorder, reorderOp.Kind)
	assert.Equal(t, []int{computedIdx}, reorderOp.Inputs)
	assert.Equal(t, []int{1}, reorderOp.Outputs)

	computed := sg.Values[computedIdx]
	assert.Equal(t, iface.PlainTagAB, computed.Desc.Tag, "relu's internal result is in this backend's natural layout")

	out := sg.Values[1]
	assert.True(t, out.Pinned)
	assert.True(t, out.HasDesc)
	assert.Equal(t, iface.PlainTagBA, out.Desc.Tag, "the external output keeps its caller-specified layout")
	assert.Equal(t, 1, out.Producer, "the external output's producer is now the reorder op")

	require.True(t, PropagateLayouts(sg).OK())
	assert.Equal(t, iface.PlainTagBA, out.Desc.Tag, "PropagateLayouts must not overwrite the pinned descriptor")
}

func TestInsertReordersPinsUnrecognizedStrides(t *testing.T) {
	// strides that match none of this backend's recognized plain tags
	// (e.g. a padded leading dimension) are still a pinned, externally
	// owned layout, just one this backend has no name for.
	padded := iface.Layout{Kind: iface.LayoutStrided, Strides: []int64{8, 1}}
	sg := buildPinnedReluSubgraph(padded, iface.Layout{})

	require.True(t, InsertReorders(sg).OK())
	require.Len(t, sg.Ops, 2)
	assert.True(t, sg.Values[0].Pinned)
	assert.Equal(t, iface.PlainTagUndef, sg.Values[0].Desc.Tag)

	require.True(t, PropagateLayouts(sg).OK())
	assert.Equal(t, iface.PlainTagUndef, sg.Values[0].Desc.Tag, "an unrecognized pinned layout must still survive PropagateLayouts")
}
