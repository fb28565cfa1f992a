package turtle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurtle_RecordsCalls(t *testing.T) {
	tr := New()
	tr.Call(1, "two")
	tr.Call(3, Kwargs{"flag": true})

	calls := tr.Calls()
	require.Len(t, calls, 2)

	assert.Equal(t, []any{1, "two"}, calls[0].Args)
	assert.Empty(t, calls[0].Kwargs)

	assert.Equal(t, []any{3}, calls[1].Args)
	assert.Equal(t, Kwargs{"flag": true}, calls[1].Kwargs)
}

func TestTurtle_Returns(t *testing.T) {
	tr := New().Returns(42)
	assert.Equal(t, 42, tr.Call())
}

func TestTurtle_AttrIsStable(t *testing.T) {
	tr := New()
	tr.Attr("Save").Call("a")
	tr.Attr("Save").Call("b")

	assert.Len(t, tr.Attr("Save").Calls(), 2)
	assert.Empty(t, tr.Calls())
	assert.Empty(t, tr.Attr("Load").Calls())
}

func TestTurtle_Reset(t *testing.T) {
	tr := New()
	tr.Call()
	tr.Attr("x").Call()

	tr.Reset()

	assert.Empty(t, tr.Calls())
	assert.Empty(t, tr.Attr("x").Calls())
}

func TestTurtle_CallsReturnsCopy(t *testing.T) {
	tr := New()
	tr.Call(1)

	calls := tr.Calls()
	calls[0] = Call{Args: []any{99}}

	assert.Equal(t, []any{1}, tr.Calls()[0].Args)
}

func TestTurtle_ConcurrentCalls(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Call(i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, tr.Calls(), 50)
}

func TestCall_String(t *testing.T) {
	assert.Equal(t, "([1 a], map[k:2])", NewCall(1, "a", Kwargs{"k": 2}).String())
	assert.Equal(t, "([], map[])", Call{}.String())
}
