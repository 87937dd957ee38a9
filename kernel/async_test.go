package kernel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tponieck/autograph/iface"
	"github.com/tponieck/autograph/layoutid"
	"github.com/tponieck/autograph/opset"
)

// chainingStream defers fn until every waitFor token is signaled, run on a
// goroutine, so ordering between chained ExecuteAsync calls is actually
// exercised rather than collapsed into synchronous execution.
type chainingStream struct {
	engine iface.Engine
	wg     sync.WaitGroup
}

func (s *chainingStream) Engine() iface.Engine { return s.engine }
func (s *chainingStream) Submit(fn func(), waitFor ...*iface.CompletionToken) *iface.CompletionToken {
	token := iface.NewCompletionToken()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for _, w := range waitFor {
			w.Wait()
		}
		fn()
		token.Signal()
	}()
	return token
}

func TestExecuteAsyncUnimplementedWhenEngineLacksSupport(t *testing.T) {
	g, part := buildSingleReluPartition()
	engine := &recordingEngine{async: false}
	k := NewSingleOpKernel()
	require.True(t, k.Compile(g, part, engine, nil, layoutid.NewManager(), opset.NewRegistry()).OK())

	_, status := k.ExecuteAsync(&chainingStream{engine: engine}, nil, nil)
	assert.False(t, status.OK())
	assert.Equal(t, iface.CodeUnimplemented, status.Code)
}

func TestExecuteAsyncRunsAndSignalsCompletion(t *testing.T) {
	g, part := buildSingleReluPartition()
	engine := &recordingEngine{async: true}
	k := NewSingleOpKernel()
	require.True(t, k.Compile(g, part, engine, nil, layoutid.NewManager(), opset.NewRegistry()).OK())

	stream := &chainingStream{engine: engine}
	x := tensorOf(part.Inputs[0], []byte{7, 7, 7, 7})
	out := tensorOf(part.Outputs[0], make([]byte, 4))

	token, status := k.ExecuteAsync(stream, []iface.Tensor{x}, []iface.Tensor{out})
	require.True(t, status.OK(), "%v", status)
	require.NotNil(t, token)

	token.Wait()
	assert.Equal(t, []byte{7, 7, 7, 7}, out.Data.Base)
}

func TestExecuteAsyncChainsAfterWaitFor(t *testing.T) {
	g, part := buildSingleReluPartition()
	engine := &recordingEngine{async: true}
	k := NewSingleOpKernel()
	require.True(t, k.Compile(g, part, engine, nil, layoutid.NewManager(), opset.NewRegistry()).OK())

	stream := &chainingStream{engine: engine}
	x := tensorOf(part.Inputs[0], []byte{3, 3, 3, 3})
	first := tensorOf(part.Outputs[0], make([]byte, 4))
	firstToken, status := k.ExecuteAsync(stream, []iface.Tensor{x}, []iface.Tensor{first})
	require.True(t, status.OK())

	second := tensorOf(part.Outputs[0], make([]byte, 4))
	secondToken, status := k.ExecuteAsync(stream, []iface.Tensor{first}, []iface.Tensor{second}, firstToken)
	require.True(t, status.OK())

	secondToken.Wait()
	assert.Equal(t, []byte{3, 3, 3, 3}, second.Data.Base, "second executable waited for the first's output")
}
