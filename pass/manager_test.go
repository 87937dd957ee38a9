package pass

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

func testRegistry() *pattern.Registry {
	r := pattern.NewRegistry()
	r.Register(&pattern.Pattern{Name: "large", Priority: 24, Match: matchAny})
	r.Register(&pattern.Pattern{Name: "normal", Priority: 15, Match: matchAny})
	r.Register(&pattern.Pattern{Name: "debug", Priority: 5, Match: matchAny})
	r.Sort()
	return r
}

func matchAny(g *iface.Graph, start iface.OpRef) ([]iface.OpRef, bool) {
	return []iface.OpRef{start}, true
}

func oneOpGraph() *iface.Graph {
	g := iface.NewGraph()
	g.AddOp(&iface.Op{Kind: "noop"})
	return g
}

func TestFusionPolicyIncludesLargeByDefault(t *testing.T) {
	os.Unsetenv("ENABLE_LARGE_PARTITION")
	os.Unsetenv("DISABLE_DNNL_BACKEND")
	m := NewManager(testRegistry())
	names := patternNames(m.registry.Filtered(priorityThreshold(iface.PolicyFusion)).Patterns())
	assert.Equal(t, []string{"large", "normal", "debug"}, names)
}

func TestFusionPolicyExcludesLargeWhenDisabled(t *testing.T) {
	t.Setenv("ENABLE_LARGE_PARTITION", "0")
	m := NewManager(testRegistry())
	names := patternNames(m.registry.Filtered(priorityThreshold(iface.PolicyFusion)).Patterns())
	assert.Equal(t, []string{"normal", "debug"}, names)
}

func TestDebugPolicyOnlyDebugBand(t *testing.T) {
	m := NewManager(testRegistry())
	names := patternNames(m.registry.Filtered(priorityThreshold(iface.PolicyDebug)).Patterns())
	assert.Equal(t, []string{"debug"}, names)
}

func TestDisableBackendShortCircuits(t *testing.T) {
	t.Setenv("DISABLE_DNNL_BACKEND", "1")
	m := NewManager(testRegistry())
	partitions, status := m.GetPartitions(oneOpGraph(), iface.PolicyFusion, iface.EngineCPU, nil)
	require.True(t, status.OK())
	assert.Nil(t, partitions)
}

func TestGetPartitionsRunsEffectivePatterns(t *testing.T) {
	os.Unsetenv("DISABLE_DNNL_BACKEND")
	os.Unsetenv("ENABLE_LARGE_PARTITION")
	os.Unsetenv("GRAPH_DUMP")
	m := NewManager(testRegistry())
	partitions, status := m.GetPartitions(oneOpGraph(), iface.PolicyDebug, iface.EngineCPU, nil)
	require.True(t, status.OK())
	require.Len(t, partitions, 1, "the debug-band pattern claims the single op")
}

// removePassConfig clears any dnnl_graph_passes.json left over in the test
// binary's working directory, before and after a test, so JSON-override
// tests never see a file an earlier GRAPH_DUMP test wrote (or vice versa).
func removePassConfig(t *testing.T) {
	t.Helper()
	os.Remove(passConfigFile)
	t.Cleanup(func() { os.Remove(passConfigFile) })
}

func TestEffectivePatternsUsesJSONOverride(t *testing.T) {
	removePassConfig(t)
	data, err := json.Marshal([]string{"debug", "large"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(passConfigFile, data, 0o644))

	m := NewManager(testRegistry())
	// PolicyFusion's own threshold would normally admit "large, normal,
	// debug" in priority order; the JSON document on disk must replace
	// that outright with exactly the order and subset it names.
	patterns, status := m.effectivePatterns(iface.PolicyFusion)
	require.True(t, status.OK())
	assert.Equal(t, []string{"debug", "large"}, patternNames(patterns))
}

func TestEffectivePatternsJSONOverrideRejectsUnknownPattern(t *testing.T) {
	removePassConfig(t)
	data, err := json.Marshal([]string{"not_registered"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(passConfigFile, data, 0o644))

	m := NewManager(testRegistry())
	_, status := m.effectivePatterns(iface.PolicyFusion)
	assert.False(t, status.OK())
	assert.Equal(t, iface.CodeInvalidArguments, status.Code)
}

func TestEffectivePatternsIgnoresMalformedJSONOverride(t *testing.T) {
	removePassConfig(t)
	require.NoError(t, os.WriteFile(passConfigFile, []byte("not json"), 0o644))

	m := NewManager(testRegistry())
	patterns, status := m.effectivePatterns(iface.PolicyDebug)
	require.True(t, status.OK())
	assert.Equal(t, []string{"debug"}, patternNames(patterns), "a document that isn't a pattern-name list falls back to the threshold table")
}

func TestGraphDumpEnvVarWritesPassConfig(t *testing.T) {
	removePassConfig(t)
	t.Setenv("GRAPH_DUMP", "1")
	os.Unsetenv("ENABLE_LARGE_PARTITION")

	m := NewManager(testRegistry())
	_, status := m.effectivePatterns(iface.PolicyFusion)
	require.True(t, status.OK())

	names, ok := readPassConfig(passConfigFile)
	require.True(t, ok, "GRAPH_DUMP=1 must dump the effective pattern order to disk")
	assert.Equal(t, []string{"large", "normal", "debug"}, names)
}

func TestGraphDumpCommaListMatchesPatternKind(t *testing.T) {
	removePassConfig(t)
	t.Setenv("GRAPH_DUMP", "graph,pattern,subgraph")
	os.Unsetenv("ENABLE_LARGE_PARTITION")

	m := NewManager(testRegistry())
	_, status := m.effectivePatterns(iface.PolicyDebug)
	require.True(t, status.OK())

	names, ok := readPassConfig(passConfigFile)
	require.True(t, ok, "GRAPH_DUMP containing \"pattern\" must dump the effective pattern order")
	assert.Equal(t, []string{"debug"}, names)
}

func TestGraphDumpUnrelatedKindDoesNotWrite(t *testing.T) {
	removePassConfig(t)
	t.Setenv("GRAPH_DUMP", "graph")
	os.Unsetenv("ENABLE_LARGE_PARTITION")

	m := NewManager(testRegistry())
	_, status := m.effectivePatterns(iface.PolicyDebug)
	require.True(t, status.OK())

	_, ok := readPassConfig(passConfigFile)
	assert.False(t, ok, "GRAPH_DUMP not naming \"pattern\" must not dump the pass order")
}
