package assertions

import (
	"errors"
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Raises runs block and asserts that it fails with an error of type E.
// A failure is either a non-nil error returned by block or a panic whose
// value is an error.
//
// A matching failure (errors.As) is absorbed and Raises returns nil. If
// block does not fail, Raises returns an AssertionError. Any other failure
// propagates unchanged: a returned error is returned as-is and a panic is
// re-raised with the same value.
//
//	err := assertions.Raises[*strconv.NumError](func() error {
//		_, err := strconv.Atoi("x")
//		return err
//	})
func Raises[E error](block func() error, msgAndArgs ...any) error {
	return expectFailure(block, matchAs[E], typeName[E](), msgAndArgs...)
}

// RaisesCall invokes fn with args and asserts that the call fails with an
// error of type E, following the same rules as Raises. If the last result
// of fn is an error, a non-nil value counts as a failure.
//
//	err := assertions.RaisesCall[*strconv.NumError](strconv.Atoi, "x")
func RaisesCall[E error](fn any, args ...any) error {
	return expectFailure(func() error {
		return invoke(fn, args)
	}, matchAs[E], typeName[E]())
}

// RaisesIs runs block and asserts that it fails with an error matching
// target (errors.Is). Non-matching failures propagate as with Raises.
func RaisesIs(target error, block func() error, msgAndArgs ...any) error {
	return expectFailure(block, func(err error) bool {
		return errors.Is(err, target)
	}, fmt.Sprintf("%v", target), msgAndArgs...)
}

func matchAs[E error](err error) bool {
	var target E
	return errors.As(err, &target)
}

func typeName[E error]() string {
	return reflect.TypeFor[E]().String()
}

type outcome struct {
	err      error
	value    any
	panicked bool
}

func capture(block func() error) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out.value = r
			out.panicked = true
		}
	}()
	out.err = block()
	return out
}

// expectFailure runs block and checks that it fails in a way accepted by
// match.
func expectFailure(block func() error, match func(error) bool, expected string, msgAndArgs ...any) error {
	out := capture(block)

	failure := out.err
	if out.panicked {
		err, ok := out.value.(error)
		if !ok {
			panic(out.value)
		}
		failure = err
	}

	if failure == nil {
		return fail(fmt.Sprintf("No exception was raised (expected %s)", expected), msgAndArgs...)
	}
	if match(failure) {
		return nil
	}
	if out.panicked {
		panic(out.value)
	}
	return failure
}

// invoke calls fn with args and returns its trailing error result, if any.
func invoke(fn any, args []any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return fmt.Errorf("cannot call %T", fn)
	}
	ft := fv.Type()

	if ft.IsVariadic() {
		if len(args) < ft.NumIn()-1 {
			return fmt.Errorf("%s takes at least %d arguments (%d given)", ft, ft.NumIn()-1, len(args))
		}
	} else if len(args) != ft.NumIn() {
		return fmt.Errorf("%s takes %d arguments (%d given)", ft, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := paramType(ft, i)
		if arg == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(arg)
		switch {
		case v.Type().AssignableTo(pt):
		case isNumber(v.Kind()) && isNumber(pt.Kind()):
			v = v.Convert(pt)
		default:
			return fmt.Errorf("argument %d: cannot use %T as %s", i, arg, pt)
		}
		in[i] = v
	}

	out := fv.Call(in)
	if len(out) == 0 {
		return nil
	}
	last := out[len(out)-1]
	if !last.Type().Implements(errorType) {
		return nil
	}
	switch last.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if last.IsNil() {
			return nil
		}
	}
	return last.Interface().(error)
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
