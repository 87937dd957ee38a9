package except

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCatch(fn func()) (eStr string, eErr error) {
	defer Catch(func(e error) { eErr = e })
	defer Catch(func(s string) { eStr = s })
	fn()
	return
}

func TestCatch(t *testing.T) {
	eStr, eErr := testCatch(func() {})
	assert.Equal(t, "", eStr)
	assert.NoError(t, eErr)

	eStr, eErr = testCatch(func() { Throw("boom") })
	assert.Equal(t, "boom", eStr)
	assert.NoError(t, eErr)
}

func TestTry(t *testing.T) {
	assert.Nil(t, Try(func() {}))
	assert.Equal(t, "x", Try(func() { Throw("x") }))
}

func TestAssert(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "unreachable") })
	assert.Panics(t, func() { Assert(false, "invariant broken") })
}
