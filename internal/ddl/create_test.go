package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDialect = Dialect{
	Name:  "test",
	Quote: DoubleQuote,
	Types: map[Type]string{Text: "TEXT", Real: "DOUBLE PRECISION", Integer: "BIGINT"},
}

func TestBuildCreateTableSQL(t *testing.T) {
	sql, err := BuildCreateTableSQL(TableDef{
		FQN: "public.merged_report",
		Columns: []ColumnDef{
			{Name: "run_id", Type: Text, PrimaryKey: true},
			{Name: "row_no", Type: Integer, PrimaryKey: true},
			{Name: "q_total_words", Type: Real, Nullable: true},
		},
	}, testDialect)
	require.NoError(t, err)

	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "public"."merged_report" (
  "run_id" TEXT NOT NULL,
  "row_no" BIGINT NOT NULL,
  "q_total_words" DOUBLE PRECISION,
  PRIMARY KEY ("run_id", "row_no")
)`, sql)
}

func TestBuildCreateTableSQL_Guard(t *testing.T) {
	d := testDialect
	d.Guard = func(fqn, raw, create string) string { return "IF MISSING " + raw + " " + create }

	sql, err := BuildCreateTableSQL(TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a", Nullable: true}}}, d)
	require.NoError(t, err)
	assert.Equal(t, "IF MISSING t CREATE TABLE \"t\" (\n  \"a\" TEXT\n)", sql)
}

func TestBuildCreateTableSQL_Errors(t *testing.T) {
	_, err := BuildCreateTableSQL(TableDef{}, testDialect)
	assert.Error(t, err)
	_, err = BuildCreateTableSQL(TableDef{FQN: "t"}, testDialect)
	assert.Error(t, err)
	_, err = BuildCreateTableSQL(TableDef{FQN: "t", Columns: []ColumnDef{{Name: " "}}}, testDialect)
	assert.Error(t, err)
	_, err = BuildCreateTableSQL(TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a"}}}, Dialect{Name: "x"})
	assert.Error(t, err)
}

func TestIdentifiers(t *testing.T) {
	got := Identifiers([]string{"Project ID", "No match (after MTPE discount)", "100%", "", "project id", "Straße"})
	assert.Equal(t, []string{
		"project_id",
		"no_match_after_mtpe_discount",
		"c_100",
		"col_4",
		"project_id_2",
		"strasse",
	}, got)
}

func TestInferType(t *testing.T) {
	assert.Equal(t, Real, InferType([]any{1.5, nil, "", 2.0}))
	assert.Equal(t, Integer, InferType([]any{int64(1), 2}))
	assert.Equal(t, Real, InferType([]any{int64(1), 2.5}))
	assert.Equal(t, Text, InferType([]any{1.5, "x"}))
	assert.Equal(t, Text, InferType([]any{nil, ""}))
	assert.Equal(t, Text, InferType([]any{true}))
}
