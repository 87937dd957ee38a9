// Package pass implements the pass manager: the policy-driven filter that
// turns a pattern registry into the ordered pattern list the matcher runs
// for one call to GetPartitions (spec.md §4.3).
package pass

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// passConfigFile is the fixed document name original_source looks for
// alongside the process, kept verbatim so an operator's existing
// dnnl_graph_passes.json continues to work unmodified.
const passConfigFile = "dnnl_graph_passes.json"

// Manager turns a priority-ordered pattern.Registry into partitions for one
// graph, honoring the policy threshold table and the env/JSON overrides
// spec.md §6 documents.
type Manager struct {
	registry *pattern.Registry
}

// NewManager returns a Manager over registry. registry is expected to
// already be Sort()ed; Manager never mutates it.
func NewManager(registry *pattern.Registry) *Manager {
	return &Manager{registry: registry}
}

// GetPartitions runs the pattern matcher over g under policy, returning the
// resulting partitions. Environment overrides (kept identical to
// original_source, spec.md §6):
//
//   - DISABLE_DNNL_BACKEND > 0: short-circuits to zero partitions, success.
//   - ENABLE_LARGE_PARTITION (default on): with policy Fusion, raises the
//     priority threshold from 20.0 to unbounded, admitting "large" patterns.
//   - a dnnl_graph_passes.json document, if present, replaces the
//     threshold-filtered pattern list outright with the named, ordered
//     pattern list it contains.
//   - GRAPH_DUMP containing "pattern" (or set truthy): writes the effective
//     pattern order to dnnl_graph_passes.json and logs it via klog.
func (m *Manager) GetPartitions(g *iface.Graph, policy iface.Policy, engine iface.EngineKind, backend iface.BackendHandle) ([]*iface.Partition, *iface.Status) {
	if envTruthy("DISABLE_DNNL_BACKEND", false) {
		return nil, iface.Success()
	}

	patterns, status := m.effectivePatterns(policy)
	if !status.OK() {
		return nil, status
	}
	return pattern.Run(g, patterns, engine, backend)
}

// effectivePatterns resolves the ordered pattern list GetPartitions should
// run, applying the JSON override when present and otherwise the
// policy/env threshold table.
func (m *Manager) effectivePatterns(policy iface.Policy) ([]*pattern.Pattern, *iface.Status) {
	if names, ok := readPassConfig(passConfigFile); ok {
		klog.V(2).Infof("pattern: loaded pass order from %s", passConfigFile)
		return m.byNames(names)
	}

	threshold := priorityThreshold(policy)
	filtered := m.registry.Filtered(threshold)

	if envTruthy("GRAPH_DUMP", false) || graphDumpWants("pattern") {
		names := patternNames(filtered.Patterns())
		if err := writePassConfig(passConfigFile, names); err != nil {
			klog.Warningf("pattern: failed to dump pass order to %s: %v", passConfigFile, err)
		} else {
			klog.V(2).Infof("pattern: dumped pass order to %s", passConfigFile)
		}
	}
	return filtered.Patterns(), iface.Success()
}

// priorityThreshold implements the exact table from
// original_source/autograph_backend.hpp's get_partitions: priority > 20 is
// the large band, 8 < priority <= 20 is normal, priority <= 8 is debug.
func priorityThreshold(policy iface.Policy) float64 {
	switch policy {
	case iface.PolicyFusion:
		if envTruthy("ENABLE_LARGE_PARTITION", true) {
			return math.MaxFloat64
		}
		return 20.0
	default: // iface.PolicyDebug
		return 8.0
	}
}

func (m *Manager) byNames(names []string) ([]*pattern.Pattern, *iface.Status) {
	out := make([]*pattern.Pattern, 0, len(names))
	for _, name := range names {
		p, ok := m.registry.ByName(name)
		if !ok {
			return nil, iface.Errorf(iface.CodeInvalidArguments, "dnnl_graph_passes.json: unknown pattern %q", name)
		}
		out = append(out, p)
	}
	return out, iface.Success()
}

func patternNames(patterns []*pattern.Pattern) []string {
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = p.Name
	}
	return names
}

func readPassConfig(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		klog.Warningf("pattern: %s is not a valid pattern-name list: %v", path, err)
		return nil, false
	}
	return names, true
}

func writePassConfig(path string, names []string) error {
	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// envTruthy reads a boolean-ish environment variable (">0" in
// original_source's getenv_int_internal sense), falling back to def when
// unset.
func envTruthy(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n > 0
}

// graphDumpWants mirrors original_source's check_verbose_string_user:
// GRAPH_DUMP may be a comma-separated list of dump kinds rather than a bare
// boolean.
func graphDumpWants(kind string) bool {
	v := os.Getenv("GRAPH_DUMP")
	for _, part := range strings.Split(v, ",") {
		if strings.TrimSpace(part) == kind {
			return true
		}
	}
	return false
}
