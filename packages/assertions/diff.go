package assertions

import (
	"fmt"
	"strconv"

	"github.com/abdul-hamid-achik/assertkit/packages/stringdiff"
	"github.com/davecgh/go-spew/spew"
)

// reprConfig renders non-text operands on one line with stable map ordering.
var reprConfig = spew.ConfigState{
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// DiffMessage describes how l and r differ. Text operands (string or
// []byte) are highlighted as-is; if either operand is not text, both are
// rendered with their debug representation first.
//
// Only single-line text produces a readable result.
func DiffMessage(l, r any) string {
	ls, lok := asText(l)
	rs, rok := asText(r)
	if !lok || !rok {
		ls, rs = repr(l), repr(r)
	}
	hl, hr := stringdiff.Highlight(ls, rs)
	return fmt.Sprintf("Diff:\nl: %s\nr: %s", hl, hr)
}

func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

// repr returns the debug representation of v used in failure messages.
func repr(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(t)
	case []byte:
		return "[]byte(" + strconv.Quote(string(t)) + ")"
	default:
		return reprConfig.Sprintf("%+v", v)
	}
}
