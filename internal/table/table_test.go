package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_PadsAndTruncates(t *testing.T) {
	tb := New("t", []string{"a", "b"})
	tb.Append("1")
	tb.Append("1", "2", "3")

	require.Equal(t, 2, tb.Len())
	assert.Equal(t, []any{"1", nil}, tb.Rows[0])
	assert.Equal(t, []any{"1", "2"}, tb.Rows[1])
}

func TestClone_IsIndependent(t *testing.T) {
	tb := New("t", []string{"a"})
	tb.Append("x")
	c := tb.Clone()
	c.Rows[0][0] = "y"
	c.Columns[0] = "b"

	assert.Equal(t, "x", tb.Rows[0][0])
	assert.Equal(t, "a", tb.Columns[0])
}

func TestNilTable(t *testing.T) {
	var tb *Table
	assert.Equal(t, 0, tb.Len())
	assert.Equal(t, 0, tb.Width())
	assert.Equal(t, -1, tb.Index("a"))
	assert.Nil(t, tb.Clone())
	assert.Nil(t, tb.Records())
}

func TestFromRecordsAndRecords(t *testing.T) {
	recs := []map[string]any{{"a": "1", "b": 2.0}, {"a": "3", "extra": true}}
	tb := FromRecords("t", []string{"a", "b"}, recs)

	assert.Equal(t, [][]any{{"1", 2.0}, {"3", nil}}, tb.Rows)
	assert.Equal(t, []map[string]any{{"a": "1", "b": 2.0}, {"a": "3", "b": nil}}, tb.Records())

	v, ok := tb.Cell(1, "a")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = tb.Cell(5, "a")
	assert.False(t, ok)
}

func TestText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{5.0, "5"},
		{5.25, "5.25"},
		{int64(7), "7"},
		{3, "3"},
		{true, "true"},
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "2025-03-01"},
		{time.Date(2025, 3, 1, 13, 4, 5, 0, time.UTC), "2025-03-01 13:04:05"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Text(tc.in))
	}
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.False(t, IsEmpty(" "))
	assert.False(t, IsEmpty(0.0))
}
