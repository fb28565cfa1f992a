// Package assertions provides assertion primitives for test code.
//
// Every assertion returns nil when its condition holds and an
// *AssertionError describing the mismatch otherwise:
//
//	if err := assertions.Equal(got, want); err != nil {
//		return err
//	}
//
// Inside go test, Expect and Must report a failed assertion through
// testing.TB:
//
//	assertions.Must(t, assertions.Equal(got, want))
//	assertions.Expect(t, assertions.InRange(latency, 0, 250))
//
// Supported assertions:
//   - Comparison: Equal, NotEqual, Lt, Lte, Gt, Gte, InRange,
//     InRangeInclusive, AlmostEqual, WithinTolerance
//   - Membership: In, NotIn, InKeys, NotInKeys, StartsWith
//   - Structure: RowsEqual, Length, LengthSeq
//   - Control flow: Raises, RaisesCall, RaisesIs, NotReached
//   - Test doubles: Call
//
// Every assertion accepts an optional trailing message. A single string is
// used verbatim; a format string followed by arguments is passed through
// fmt.Sprintf. An empty message falls back to the default one.
//
// Equality failures include a highlighted diff of both operands (see
// DiffMessage). The diff is most readable for single-line text.
package assertions
