package assertions

import (
	"fmt"
	"reflect"

	"github.com/abdul-hamid-achik/assertkit/packages/turtle"
)

// CallRecorder is a test double that keeps an ordered log of its calls.
// *turtle.Turtle satisfies it.
type CallRecorder interface {
	Calls() []turtle.Call
}

// Call asserts that the call recorded at index was made with args. A
// trailing turtle.Kwargs argument holds the expected keyword arguments.
// A negative index counts back from the most recent call, so -1 is the
// last call made.
//
//	rec.Call(1, turtle.Kwargs{"retry": true})
//	err := assertions.Call(rec, 0, 1, turtle.Kwargs{"retry": true})
func Call(rec CallRecorder, index int, args ...any) error {
	expected := turtle.NewCall(args...)

	var actual *turtle.Call
	calls := rec.Calls()
	i := index
	if i < 0 {
		i += len(calls)
	}
	if i >= 0 && i < len(calls) {
		actual = &calls[i]
	}

	if actual != nil && callsEqual(*actual, expected) {
		return nil
	}

	was := "nil"
	if actual != nil {
		was = actual.String()
	}
	return fail(fmt.Sprintf("Call %d expected %s, was %s", index, expected, was))
}

func callsEqual(a, b turtle.Call) bool {
	argsEqual := (len(a.Args) == 0 && len(b.Args) == 0) || reflect.DeepEqual(a.Args, b.Args)
	kwargsEqual := (len(a.Kwargs) == 0 && len(b.Kwargs) == 0) || reflect.DeepEqual(a.Kwargs, b.Kwargs)
	return argsEqual && kwargsEqual
}
