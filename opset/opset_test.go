package opset

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistryKnowsSum(t *testing.T) {
	r := NewRegistry()
	s, ok := r.Lookup(KindSumN)
	assert.True(t, ok)
	assert.True(t, s.DTypes[dtypes.Float32])
	assert.True(t, r.ValidateArity(KindSumN, 4, 1))
	assert.False(t, r.ValidateArity(KindSumN, 1, 1), "sum requires at least 2 inputs")
}

func TestUnknownKindUnsupported(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup(Kind("not_a_real_op"))
	assert.False(t, ok)
	assert.False(t, r.SupportsDType(Kind("not_a_real_op"), dtypes.Float32))
}

func TestReLUIsUnary(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.ValidateArity(KindReLU, 1, 1))
	assert.False(t, r.ValidateArity(KindReLU, 2, 1))
}
