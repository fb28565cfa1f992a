package assertions

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// ObjectsAreEqual reports whether l and r are equal: byte slices by content,
// everything else by reflect.DeepEqual.
func ObjectsAreEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == r
	}
	lb, lok := l.([]byte)
	rb, rok := r.([]byte)
	if lok && rok {
		return bytes.Equal(lb, rb)
	}
	return reflect.DeepEqual(l, r)
}

// Equal asserts that l and r are equal. The default message shows both
// values and a highlighted diff.
func Equal(l, r any, msgAndArgs ...any) error {
	if ObjectsAreEqual(l, r) {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: l == r\nl: %s\nr: %s\n\n%s",
		repr(l), repr(r), DiffMessage(l, r)), msgAndArgs...)
}

// Equals is an alias for Equal.
func Equals(l, r any, msgAndArgs ...any) error {
	return Equal(l, r, msgAndArgs...)
}

// NotEqual asserts that l and r differ.
func NotEqual(l, r any, msgAndArgs ...any) error {
	if !ObjectsAreEqual(l, r) {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: %v != %v", l, r), msgAndArgs...)
}

// AlmostEqual asserts that l and r are equal once both are rounded to
// digits decimal places. Negative digits round to tens, hundreds and so on.
func AlmostEqual(l, r float64, digits int, msgAndArgs ...any) error {
	if roundTo(l, digits) == roundTo(r, digits) {
		return nil
	}
	return fail(fmt.Sprintf("%v !~= %v", l, r), msgAndArgs...)
}

// WithinTolerance asserts that the error of r relative to l is below
// tolerance: |l-r| / l < tolerance. The denominator is l, not the larger
// magnitude, so the check is not symmetric. l == 0 never passes and a
// negative l always passes.
func WithinTolerance(l, r, tolerance float64, msgAndArgs ...any) error {
	if math.Abs(l-r)/l < tolerance {
		return nil
	}
	return fail(fmt.Sprintf("%v !~= %v", l, r), msgAndArgs...)
}

// roundTo rounds half away from zero. v is returned unchanged when scaling
// overflows or when v already has no digits below the rounding position.
func roundTo(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	if p == 0 {
		return math.Copysign(0, v)
	}
	scaled := v * p
	if math.IsInf(p, 0) || math.IsInf(scaled, 0) || math.IsNaN(scaled) || math.Abs(scaled) >= 1<<52 {
		return v
	}
	return math.Round(scaled) / p
}

// Lt asserts l < r.
func Lt[T cmp.Ordered](l, r T, msgAndArgs ...any) error {
	if l < r {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: %v < %v", l, r), msgAndArgs...)
}

// Lte asserts l <= r.
func Lte[T cmp.Ordered](l, r T, msgAndArgs ...any) error {
	if l <= r {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: %v lte %v", l, r), msgAndArgs...)
}

// Gt asserts l > r.
func Gt[T cmp.Ordered](l, r T, msgAndArgs ...any) error {
	if l > r {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: %v > %v", l, r), msgAndArgs...)
}

// Gte asserts l >= r.
func Gte[T cmp.Ordered](l, r T, msgAndArgs ...any) error {
	if l >= r {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: %v >= %v", l, r), msgAndArgs...)
}

// InRange asserts start < val < end.
func InRange[T cmp.Ordered](val, start, end T, msgAndArgs ...any) error {
	return inRange(val, start, end, false, msgAndArgs...)
}

// InRangeInclusive asserts start <= val <= end.
func InRangeInclusive[T cmp.Ordered](val, start, end T, msgAndArgs ...any) error {
	return inRange(val, start, end, true, msgAndArgs...)
}

func inRange[T cmp.Ordered](val, start, end T, inclusive bool, msgAndArgs ...any) error {
	if inclusive {
		if start <= val && val <= end {
			return nil
		}
		return fail(fmt.Sprintf("! %v <= %s <= %s", start, repr(val), repr(end)), msgAndArgs...)
	}
	if start < val && val < end {
		return nil
	}
	return fail(fmt.Sprintf("! %v < %s < %s", start, repr(val), repr(end)), msgAndArgs...)
}

// In asserts that collection contains an element equal to item.
func In[T any](item T, collection []T, msgAndArgs ...any) error {
	if contains(item, collection) {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: expected %s in %s", repr(item), repr(collection)), msgAndArgs...)
}

// NotIn asserts that no element of collection equals item.
func NotIn[T any](item T, collection []T, msgAndArgs ...any) error {
	if !contains(item, collection) {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: expected %s not in %s", repr(item), repr(collection)), msgAndArgs...)
}

// InKeys asserts that key is present in m.
func InKeys[K comparable, V any](key K, m map[K]V, msgAndArgs ...any) error {
	if _, ok := m[key]; ok {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: expected %s in %s", repr(key), repr(m)), msgAndArgs...)
}

// NotInKeys asserts that key is absent from m.
func NotInKeys[K comparable, V any](key K, m map[K]V, msgAndArgs ...any) error {
	if _, ok := m[key]; !ok {
		return nil
	}
	return fail(fmt.Sprintf("assertion failed: expected %s not in %s", repr(key), repr(m)), msgAndArgs...)
}

func contains[T any](item T, collection []T) bool {
	for _, el := range collection {
		if ObjectsAreEqual(any(el), any(item)) {
			return true
		}
	}
	return false
}

// StartsWith asserts that val begins with prefix.
func StartsWith(val, prefix string, msgAndArgs ...any) error {
	if strings.HasPrefix(val, prefix) {
		return nil
	}
	return fail(fmt.Sprintf("%s does not start with %s", repr(val), repr(prefix)), msgAndArgs...)
}

// NotReached always fails. Use it to mark code paths that must not run.
func NotReached(msgAndArgs ...any) error {
	return fail("egads! this line ought not to have been reached", msgAndArgs...)
}
