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

// buildLinearSubgraph builds a three-op internal chain in0 -> relu -> relu
// -> relu -> out, already lowered, so PlanMemory can run directly: two
// internal temporaries, the second produced by a single-input op that is
// the first's only consumer, so the second can take over the first's slot
// as an in-place pair.
func buildLinearSubgraph() *Subgraph {
	sg := New(iface.EngineCPU, nil, nil, layoutid.NewManager(), opset.NewRegistry())
	desc := iface.MemoryDescriptor{Dims: []int64{4}, DType: dtypes.Float32, Kind: iface.FormatPlain, Tag: iface.PlainTagA}

	sg.Values = []*Value{
		{Desc: desc, HasDesc: true, Producer: noOp},    // 0: external input
		{Desc: desc, HasDesc: true, Producer: 0},        // 1: temp after op0
		{Desc: desc, HasDesc: true, Producer: 1},        // 2: temp after op1
		{Desc: desc, HasDesc: true, Producer: 2},        // 3: external output
	}
	sg.Values[0].Consumers = []int{0}
	sg.Values[1].Consumers = []int{1}
	sg.Values[2].Consumers = []int{2}

	sg.Ops = []*Op{
		{Kind: opset.KindReLU, Inputs: []int{0}, Outputs: []int{1}},
		{Kind: opset.KindReLU, Inputs: []int{1}, Outputs: []int{2}},
		{Kind: opset.KindReLU, Inputs: []int{2}, Outputs: []int{3}},
	}
	sg.Inputs = []int{0}
	sg.Outputs = []int{3}
	return sg
}

func TestPlanMemoryReusesFreedSlot(t *testing.T) {
	sg := buildLinearSubgraph()
	status := PlanMemory(sg)
	require.True(t, status.OK())

	// value 2's producing op (the second ReLU) has exactly one input whose
	// lifetime ends at that very step, so it qualifies for in-place reuse
	// of value 1's slot instead of growing the scratchpad.
	assert.Equal(t, 1, sg.Plan.InPlacePairs[2])
	assert.Equal(t, sg.Values[1].Offset, sg.Values[2].Offset)
	assert.Equal(t, sg.Values[1].Length, sg.Values[2].Length)
	assert.Equal(t, sg.Values[1].Length, sg.Plan.ScratchSize, "no second slot allocated for the in-place output")
}

func TestPlanMemorySkipsExternalIO(t *testing.T) {
	sg := buildLinearSubgraph()
	require.True(t, PlanMemory(sg).OK())
	assert.Zero(t, sg.Values[0].Offset, "external input is never assigned a scratch slot")
	assert.Zero(t, sg.Values[3].Offset, "external output is never assigned a scratch slot")
}

func TestPlanMemoryPromotesConstants(t *testing.T) {
	sg := buildLinearSubgraph()
	sg.Values[1].IsConstant = true
	sg.ConstantCacheOK = true
	require.True(t, PlanMemory(sg).OK())
	assert.Positive(t, sg.Plan.ConstSize, "constant value promoted to the persistent region")
}
