package mssql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportmerge/internal/ddl"
	"reportmerge/internal/storage"
)

func TestDialect_CreateTable(t *testing.T) {
	sql, err := ddl.BuildCreateTableSQL(ddl.TableDef{
		FQN: "dbo.rm_merged_report",
		Columns: []ddl.ColumnDef{
			{Name: "run_id", Type: ddl.Key, PrimaryKey: true},
			{Name: "row_no", Type: ddl.Integer, PrimaryKey: true},
			{Name: "b_project_id", Type: ddl.Text, Nullable: true},
		},
	}, Dialect)
	require.NoError(t, err)

	assert.Equal(t, `IF OBJECT_ID(N'[dbo].[rm_merged_report]', N'U') IS NULL
BEGIN
CREATE TABLE [dbo].[rm_merged_report] (
  [run_id] NVARCHAR(64) NOT NULL,
  [row_no] BIGINT NOT NULL,
  [b_project_id] NVARCHAR(MAX),
  PRIMARY KEY ([run_id], [row_no])
);
END`, sql)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "[a]", quoteIdent("a"))
	assert.Equal(t, "[we]]ird]", quoteIdent("we]ird"))
}

func TestNewRepository_BadDSN(t *testing.T) {
	_, err := NewRepository(context.Background(), "sqlserver://host:notaport")
	require.Error(t, err)
}

func TestRegistered(t *testing.T) {
	orig := newRepository
	t.Cleanup(func() { newRepository = orig })
	var gotDSN string
	newRepository = func(_ context.Context, dsn string) (*Repository, error) {
		gotDSN = dsn
		return &Repository{}, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: Kind, DSN: "sqlserver://sa@db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlserver://sa@db", gotDSN)
	assert.Equal(t, Kind, repo.Dialect().Name)
}
