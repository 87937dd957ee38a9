//go:build autograph_layout_debug

package layoutid

// Building with -tags autograph_layout_debug activates the tag-biased id
// scheme described in spec.md §4.1: small ids directly encode a well-known
// plain format tag instead of indexing into the interning vector, which
// keeps the common case trivially reversible by hand when reading a debug
// dump.
func init() {
	tagBiasEnabled = true
}
