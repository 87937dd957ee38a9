package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortDescendingStable(t *testing.T) {
	r := NewRegistry()
	r.Register(&Pattern{Name: "a", Priority: 10})
	r.Register(&Pattern{Name: "b", Priority: 25})
	r.Register(&Pattern{Name: "c", Priority: 10}) // ties with "a", registered after
	r.Register(&Pattern{Name: "d", Priority: 5})
	r.Sort()

	names := make([]string, len(r.Patterns()))
	for i, p := range r.Patterns() {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, names, "descending priority, ties keep registration order")
}

func TestFiltered(t *testing.T) {
	r := NewRegistry()
	r.Register(&Pattern{Name: "large", Priority: 25})
	r.Register(&Pattern{Name: "normal", Priority: 15})
	r.Register(&Pattern{Name: "debug", Priority: 5})
	r.Sort()

	debugOnly := r.Filtered(8)
	assert.Len(t, debugOnly.Patterns(), 1)
	assert.Equal(t, "debug", debugOnly.Patterns()[0].Name)

	normalAndDebug := r.Filtered(20)
	assert.Len(t, normalAndDebug.Patterns(), 2)
}

func TestByName(t *testing.T) {
	r := NewRegistry()
	r.Register(&Pattern{Name: "sum_fusion", Priority: 10})
	p, ok := r.ByName("sum_fusion")
	assert.True(t, ok)
	assert.Equal(t, 10.0, p.Priority)

	_, ok = r.ByName("missing")
	assert.False(t, ok)
}
