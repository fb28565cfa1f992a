package assertions

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Length asserts that seq holds expected elements. Strings, slices, arrays
// and maps are measured directly; a receive channel is drained until it is
// closed.
//
// A custom message may reference {sequence}, {length} and {expected}.
func Length(seq any, expected int, msgAndArgs ...any) error {
	length, ok := lengthOf(seq)
	if !ok {
		return fail(fmt.Sprintf("cannot get length of %T", seq), msgAndArgs...)
	}
	if length == expected {
		return nil
	}

	msg := messageFromMsgAndArgs(msgAndArgs...)
	if msg == "" {
		return fail(fmt.Sprintf("%v has length %d expected %d", seq, length, expected))
	}
	r := strings.NewReplacer(
		"{sequence}", fmt.Sprintf("%v", seq),
		"{length}", strconv.Itoa(length),
		"{expected}", strconv.Itoa(expected),
	)
	return fail(r.Replace(msg))
}

// LengthSeq materializes a lazy sequence and asserts its length.
func LengthSeq[T any](seq iter.Seq[T], expected int, msgAndArgs ...any) error {
	return Length(slices.Collect(seq), expected, msgAndArgs...)
}

func lengthOf(seq any) (int, bool) {
	switch v := seq.(type) {
	case string:
		return len(v), true
	case []any:
		return len(v), true
	case map[string]any:
		return len(v), true
	}

	rv := reflect.ValueOf(seq)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len(), true
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir == 0 || rv.IsNil() {
			return 0, false
		}
		n := 0
		for {
			if _, ok := rv.Recv(); !ok {
				return n, true
			}
			n++
		}
	default:
		return 0, false
	}
}
