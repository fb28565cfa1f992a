package assertions

import "testing"

// Expect reports err through t.Error and returns whether the assertion
// passed.
func Expect(t testing.TB, err error) bool {
	t.Helper()
	if err != nil {
		t.Error(err.Error())
		return false
	}
	return true
}

// Must reports err through t.Fatal, stopping the test.
func Must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err.Error())
	}
}
