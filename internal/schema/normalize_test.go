package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportmerge/internal/table"
)

/*
TestNormalize_TableDriven covers case folding, trimming, whitespace run
collapsing and the characters that must survive untouched (percent signs,
dashes, parentheses used by the word-count exports).
*/
func TestNormalize_TableDriven(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Project ID", "project_id"},
		{" PROJECT  ID ", "project_id"},
		{"project_id", "project_id"},
		{"\tProject\nID ", "project_id"},
		{"50%-74%", "50%-74%"},
		{"No match (after MTPE discount)", "no_match_(after_mtpe_discount)"},
		{"", ""},
		{"   ", ""},
		{"Straße", "strasse"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	labels := []string{
		"Project ID", " PROJECT  ID ", "Creation date", "100%", "Ünïcödé  Label",
		"already_normal", "MiXeD\t\tCase ", "e\u0301tude", "ÉTUDE",
	}
	for _, l := range labels {
		once := Normalize(l)
		assert.Equal(t, once, Normalize(once), "label %q", l)
	}
}

func TestNormalize_ComposedAndDecomposedMatch(t *testing.T) {
	assert.Equal(t, Normalize("\u00e9tude"), Normalize("e\u0301tude"))
}

func TestResolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	for _, col := range []string{"project_id", " PROJECT  ID ", "Project ID"} {
		tbl := table.New("xtm", []string{"other", col})
		got, ok := Resolve(tbl, "Project ID")
		require.True(t, ok, "column %q", col)
		assert.Equal(t, col, got)
	}
}

func TestResolve_Miss(t *testing.T) {
	tbl := table.New("xtm", []string{"a", "b"})
	_, ok := Resolve(tbl, "Project ID")
	assert.False(t, ok)

	_, ok = Resolve(nil, "a")
	assert.False(t, ok)
}

/*
TestResolve_TieFirstWins verifies that when two columns normalize to the same
label the first one in column order is returned.
*/
func TestResolve_TieFirstWins(t *testing.T) {
	tbl := table.New("t", []string{"Project ID", "project_id"})
	got, ok := Resolve(tbl, "PROJECT_ID")
	require.True(t, ok)
	assert.Equal(t, "Project ID", got)

	r := NewResolver(tbl.Columns)
	got, ok = r.Lookup("project id")
	require.True(t, ok)
	assert.Equal(t, "Project ID", got)
}
