// Package turtle provides a call-recording test double.
//
// A Turtle accepts any call, remembers its arguments and returns a
// configured value. Attributes are created on first access, so a turtle can
// stand in for an object with arbitrary methods:
//
//	logger := turtle.New()
//	logger.Attr("Info").Call("started", turtle.Kwargs{"port": 8080})
//	calls := logger.Attr("Info").Calls()
package turtle

import (
	"fmt"
	"sync"
)

// Kwargs holds keyword arguments of a recorded call. When passed as the last
// argument to Call it is recorded separately from the positional arguments.
type Kwargs map[string]any

// Call is a single recorded invocation.
type Call struct {
	Args   []any
	Kwargs Kwargs
}

// String renders the call as (args, kwargs).
func (c Call) String() string {
	args := c.Args
	if args == nil {
		args = []any{}
	}
	kwargs := c.Kwargs
	if kwargs == nil {
		kwargs = Kwargs{}
	}
	return fmt.Sprintf("(%v, %v)", args, map[string]any(kwargs))
}

// NewCall builds a Call the same way Turtle.Call records one.
func NewCall(args ...any) Call {
	call := Call{Args: []any{}, Kwargs: Kwargs{}}
	if n := len(args); n > 0 {
		if kw, ok := args[n-1].(Kwargs); ok {
			args = args[:n-1]
			for k, v := range kw {
				call.Kwargs[k] = v
			}
		}
	}
	call.Args = append(call.Args, args...)
	return call
}

// Turtle records every call made to it. It is safe for concurrent use.
type Turtle struct {
	mu      sync.Mutex
	calls   []Call
	attrs   map[string]*Turtle
	returns any
}

// New creates a turtle that returns nil from every call.
func New() *Turtle {
	return &Turtle{attrs: make(map[string]*Turtle)}
}

// Returns sets the value returned by subsequent calls.
func (t *Turtle) Returns(v any) *Turtle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.returns = v
	return t
}

// Call records an invocation and returns the configured value.
func (t *Turtle) Call(args ...any) any {
	call := NewCall(args...)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, call)
	return t.returns
}

// Attr returns the child turtle registered under name, creating it on first
// access.
func (t *Turtle) Attr(name string) *Turtle {
	t.mu.Lock()
	defer t.mu.Unlock()
	child, ok := t.attrs[name]
	if !ok {
		child = New()
		t.attrs[name] = child
	}
	return child
}

// Calls returns a copy of the call log in invocation order.
func (t *Turtle) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// Reset clears the call log of this turtle and all of its attributes.
func (t *Turtle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
	for _, child := range t.attrs {
		child.Reset()
	}
}
