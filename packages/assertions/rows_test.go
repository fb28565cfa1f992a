package assertions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsEqual(t *testing.T) {
	tests := []struct {
		name   string
		rows1  any
		rows2  any
		passed bool
	}{
		{
			name:   "key order ignored",
			rows1:  []map[string]any{{"a": 1, "b": 2}},
			rows2:  []map[string]any{{"b": 2, "a": 1}},
			passed: true,
		},
		{
			name:   "different value",
			rows1:  []map[string]any{{"a": 1}},
			rows2:  []map[string]any{{"a": 2}},
			passed: false,
		},
		{
			name:   "row order ignored",
			rows1:  []map[string]any{{"id": 1}, {"id": 2}},
			rows2:  []map[string]any{{"id": 2}, {"id": 1}},
			passed: true,
		},
		{
			name:   "duplicates count",
			rows1:  []map[string]any{{"id": 1}, {"id": 1}},
			rows2:  []map[string]any{{"id": 1}},
			passed: false,
		},
		{
			name:   "sequence records",
			rows1:  [][]any{{3, 1, 2}, {"x"}},
			rows2:  [][]any{{"x"}, {1, 2, 3}},
			passed: true,
		},
		{
			name:   "numeric widths",
			rows1:  []map[string]any{{"count": int64(2), "ratio": 0.5}},
			rows2:  []map[string]any{{"count": 2, "ratio": float32(0.5)}},
			passed: true,
		},
		{
			name:   "string is not a number",
			rows1:  []map[string]any{{"id": "1"}},
			rows2:  []map[string]any{{"id": 1}},
			passed: false,
		},
		{
			name:   "map and sequence differ",
			rows1:  []any{map[string]any{"a": 1}},
			rows2:  []any{[]any{"a", 1}},
			passed: false,
		},
		{
			name:   "empty",
			rows1:  []map[string]any{},
			rows2:  nil,
			passed: true,
		},
		{
			name:   "nested strings keep their boundaries",
			rows1:  []map[string]any{{"a": []string{"x y"}}},
			rows2:  []map[string]any{{"a": []string{"x", "y"}}},
			passed: false,
		},
		{
			name:   "nested string is not a number",
			rows1:  [][]any{{[]any{"1"}}},
			rows2:  [][]any{{[]any{1}}},
			passed: false,
		},
		{
			name:   "nested numeric widths",
			rows1:  [][]any{{[]any{int64(1), 2.0}}},
			rows2:  [][]any{{[]int{1, 2}}},
			passed: true,
		},
		{
			name:   "nested sequence order matters",
			rows1:  [][]any{{[]int{1, 2}}},
			rows2:  [][]any{{[]int{2, 1}}},
			passed: false,
		},
		{
			name:   "nested map key order ignored",
			rows1:  []map[string]any{{"meta": map[string]any{"a": 1, "b": "x"}}},
			rows2:  []map[string]any{{"meta": map[string]any{"b": "x", "a": int64(1)}}},
			passed: true,
		},
		{
			name:   "nested map and sequence differ",
			rows1:  []map[string]any{{"v": map[string]any{}}},
			rows2:  []map[string]any{{"v": []any{}}},
			passed: false,
		},
		{
			name:   "bytes compare as text",
			rows1:  []map[string]any{{"name": []byte("ada")}},
			rows2:  []map[string]any{{"name": "ada"}},
			passed: true,
		},
		{
			name:   "typed maps",
			rows1:  []map[string]string{{"name": "ada"}},
			rows2:  []map[string]any{{"name": "ada"}},
			passed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RowsEqual(tt.rows1, tt.rows2)
			if tt.passed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRowsEqual_Symmetric(t *testing.T) {
	a := []map[string]any{{"a": 1, "b": "x"}, {"a": 2, "b": "y"}}
	b := []map[string]any{{"b": "y", "a": 2}, {"b": "x", "a": 1}}

	assert.NoError(t, RowsEqual(a, b))
	assert.NoError(t, RowsEqual(b, a))
}

func TestRowsEqual_FailureShowsNormalizedRows(t *testing.T) {
	err := RowsEqual([]map[string]any{{"a": 1}}, []map[string]any{{"a": 2}})
	require.Error(t, err)
	assert.True(t, IsAssertionError(err))
	assert.Contains(t, err.Error(), `{"a": 1}`)
	assert.Contains(t, err.Error(), `{"a": 2}`)
	assert.Contains(t, err.Error(), "Diff:")
}

func TestRowsEqual_InvalidInput(t *testing.T) {
	err := RowsEqual(42, []map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows must be a slice of records")

	err = RowsEqual([]any{7}, []any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0: record must be a map or a sequence")

	err = RowsEqual(42, []map[string]any{}, "users table: %s", "unexpected shape")
	require.Error(t, err)
	assert.Equal(t, "users table: unexpected shape", err.Error())

	err = RowsEqual([]any{}, []any{7}, "second table")
	require.Error(t, err)
	assert.Equal(t, "second table", err.Error())
}
