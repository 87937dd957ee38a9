// Package pattern implements the pattern registry and matcher used to
// discover fusable subgraphs and hand them to the pass manager as
// partitions (spec.md §4.2).
package pattern

import "github.com/tponieck/autograph/iface"

// MatchFunc attempts to recognize a pattern's shape anchored at op `start`.
// It returns the full set of ops the pattern claims (including start) and
// ok=true on a match. Implementations must never include an op reachable
// only through a value with more than one external consumer when the
// pattern depends on single-consumer assumptions (spec.md §4.2).
type MatchFunc func(g *iface.Graph, start iface.OpRef) (ops []iface.OpRef, ok bool)

// Pattern is a declarative template over op kinds and edges: a matcher, a
// priority, and the kernel kind that compiles partitions this pattern
// produces (spec.md §3, §4.2; the KernelKind field supplements spec.md with
// the kernel-selection hook described in SPEC_FULL.md §11/original_source's
// FCreateKernel factories).
type Pattern struct {
	Name       string
	Priority   float64
	KernelKind string
	Match      MatchFunc
}

// PriorityBand classifies a priority value per spec.md §4.2.
type PriorityBand int

const (
	BandDebug PriorityBand = iota // priority <= 8
	BandNormal                    // 8 < priority <= 20
	BandLarge                     // priority > 20
)

// Band classifies p.Priority.
func (p *Pattern) Band() PriorityBand {
	switch {
	case p.Priority > 20:
		return BandLarge
	case p.Priority > 8:
		return BandNormal
	default:
		return BandDebug
	}
}
