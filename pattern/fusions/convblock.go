package fusions

import (
	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/pattern"
)

// RegisterConvBlock registers conv_block_fusion: two conv_post_ops groups
// chained back to back, e.g. the two convolutions of a residual block body.
// Priority 24, the largest band, so it gets first look at a Convolution op
// before conv_post_ops_fusion settles for fusing just one of the two.
func RegisterConvBlock(reg *pattern.Registry) {
	reg.Register(&pattern.Pattern{
		Name:       "conv_block_fusion",
		Priority:   24,
		KernelKind: "conv_block",
		Match:      matchConvBlock,
	})
}

func matchConvBlock(g *iface.Graph, start iface.OpRef) ([]iface.OpRef, bool) {
	first, ok := matchConvPostOps(g, start)
	if !ok {
		return nil, false
	}
	last := g.Op(first[len(first)-1])
	next, ok := chainNext(g, last)
	if !ok || g.Op(next).Kind != iface.OpConvolution {
		return nil, false
	}
	second, ok := matchConvPostOps(g, next)
	if !ok {
		return nil, false
	}
	return append(first, second...), true
}
