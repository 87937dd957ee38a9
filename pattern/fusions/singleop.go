package fusions

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// RegisterSingleOp registers the pass-through pattern every op kind falls
// back to: one op, one partition, no fusion. original_source registers this
// unconditionally regardless of policy, so that a graph is never left with
// an op belonging to no partition at all; it sits at the bottom of the
// priority order (spec.md §4.3's debug band, priority <= 8) so every other
// pattern gets first refusal.
func RegisterSingleOp(reg *pattern.Registry) {
	reg.Register(&pattern.Pattern{
		Name:       "single_op",
		Priority:   5,
		KernelKind: "single_op",
		Match: func(g *iface.Graph, start iface.OpRef) ([]iface.OpRef, bool) {
			return []iface.OpRef{start}, true
		},
	})
}
