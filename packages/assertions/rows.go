package assertions

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// RowsEqual asserts that rows1 and rows2 hold the same records regardless
// of record order or field order. Each input must be a slice or array of
// records; a record is either a map (compared as its set of key/value
// pairs) or a slice/array (compared as a sorted multiset of values).
//
// Numbers compare by value across Go types, so a row scanned from a
// database as int64 matches an int literal.
func RowsEqual(rows1, rows2 any, msgAndArgs ...any) error {
	n1, err := normRows(rows1)
	if err != nil {
		return fail(err.Error(), msgAndArgs...)
	}
	n2, err := normRows(rows2)
	if err != nil {
		return fail(err.Error(), msgAndArgs...)
	}
	return Equal(n1, n2, msgAndArgs...)
}

func normRows(rows any) ([]string, error) {
	rv := indirect(reflect.ValueOf(rows))
	if !rv.IsValid() {
		return []string{}, nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("rows must be a slice of records, got %T", rows)
	}

	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		row, err := normRow(rv.Index(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, row)
	}
	sort.Strings(out)
	return out, nil
}

func normRow(rv reflect.Value) (string, error) {
	rv = indirect(rv)
	switch rv.Kind() {
	case reflect.Map:
		pairs := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, canonical(iter.Key())+": "+canonical(iter.Value()))
		}
		sort.Strings(pairs)
		return "{" + strings.Join(pairs, ", ") + "}", nil
	case reflect.Slice, reflect.Array:
		values := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			values = append(values, canonical(rv.Index(i)))
		}
		sort.Strings(values)
		return "(" + strings.Join(values, ", ") + ")", nil
	case reflect.Invalid:
		return "", errors.New("record is nil")
	default:
		return "", fmt.Errorf("record must be a map or a sequence, got %s", rv.Type())
	}
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// canonical renders a field value so that equal values render identically.
// Nested sequences render as [...] in order and nested maps as {...} with
// sorted keys; strings are always quoted.
func canonical(rv reflect.Value) string {
	rv = indirect(rv)
	if !rv.IsValid() {
		return "nil"
	}

	switch rv.Kind() {
	case reflect.String:
		return strconv.Quote(rv.String())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return canonicalFloat(rv.Float())
	case reflect.Slice, reflect.Array:
		// DB drivers may return text columns as []byte
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return strconv.Quote(string(bytesOf(rv)))
		}
		items := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, canonical(rv.Index(i)))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case reflect.Map:
		pairs := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, canonical(iter.Key())+": "+canonical(iter.Value()))
		}
		sort.Strings(pairs)
		return "{" + strings.Join(pairs, ", ") + "}"
	default:
		if rv.CanInterface() {
			return repr(rv.Interface())
		}
		return rv.String()
	}
}

func bytesOf(rv reflect.Value) []byte {
	b := make([]byte, rv.Len())
	for i := range b {
		b[i] = byte(rv.Index(i).Uint())
	}
	return b
}

func canonicalFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
