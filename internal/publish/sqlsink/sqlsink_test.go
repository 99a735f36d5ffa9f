package sqlsink

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportmerge/internal/ddl"
	"reportmerge/internal/merge"
	"reportmerge/internal/publish"
	"reportmerge/internal/storage/sqlite"
	"reportmerge/internal/table"
)

func report(t *testing.T) publish.Report {
	t.Helper()
	xtm := table.New("XTM", []string{"Project ID", "Words"})
	xtm.Append("P1", 100)
	out := table.New("Indeed_Standard", []string{"B_Project_ID", "Q_Total_Words", "Note"})
	out.Append("P1", 12.5, nil)
	out.Append("P2", 3, "")
	in := merge.Inputs{XTM: xtm, TOS: table.New("TOS", []string{"order_id"}), EDIT: table.New("Edit Distance", nil)}
	return publish.NewReport("Weekly", in, merge.Result{Output: out}, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
}

func open(t *testing.T, prefix string) (*Publisher, *sqlite.Repository) {
	t.Helper()
	log, _ := test.NewNullLogger()
	repo, err := sqlite.NewRepository(context.Background(), ":memory:")
	require.NoError(t, err)
	p := NewWithRepository(repo, publish.SQLConfig{Kind: sqlite.Kind, TablePrefix: prefix}, log)
	t.Cleanup(func() { _ = p.Close() })
	return p, repo
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "merged_report", TableName("", publish.TabMerged))
	assert.Equal(t, "rm_xtm_raw", TableName("rm", publish.TabXTM))
}

func TestPublish_WritesEveryTab(t *testing.T) {
	p, repo := open(t, "rm")
	r := report(t)

	rec, err := p.Publish(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, Kind, rec.Kind)
	assert.Equal(t, r.Fingerprint(), rec.ID)
	assert.Equal(t, 5, rec.Tabs)
	assert.Equal(t, "sqlite:rm_merged_report,rm_validation_log,rm_xtm_raw,rm_tos_raw,rm_edit_distance_raw", rec.Location)

	rows, err := repo.DB().Query(`SELECT row_no, b_project_id, q_total_words, note FROM rm_merged_report WHERE run_id = ? ORDER BY row_no`, r.Fingerprint())
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		no    int64
		id    string
		words float64
		note  *string
	}
	var got []row
	for rows.Next() {
		var x row
		require.NoError(t, rows.Scan(&x.no, &x.id, &x.words, &x.note))
		got = append(got, x)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []row{{1, "P1", 12.5, nil}, {2, "P2", 3, nil}}, got)

	var n int
	require.NoError(t, repo.DB().QueryRow(`SELECT COUNT(*) FROM rm_validation_log WHERE col_a = 'VALIDATION WARNINGS'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestPublish_ReplacesSameRun(t *testing.T) {
	p, repo := open(t, "")
	r := report(t)

	_, err := p.Publish(context.Background(), r)
	require.NoError(t, err)
	_, err = p.Publish(context.Background(), r)
	require.NoError(t, err)

	var n int
	require.NoError(t, repo.DB().QueryRow(`SELECT COUNT(*) FROM merged_report`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestTableFor_HeaderlessTab(t *testing.T) {
	tab := publish.Tab{Name: "Log", Grid: [][]any{{"a", 1}, {"b"}}}
	td, rows := tableFor("log", tab, "run")

	var names []string
	for _, c := range td.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"run_id", "row_no", "col_a", "col_b"}, names)
	assert.Equal(t, ddl.Integer, td.Columns[3].Type)
	assert.Equal(t, [][]any{{"run", int64(1), "a", int64(1)}, {"run", int64(2), "b", nil}}, rows)
}

func TestPublish_ViaRegistry(t *testing.T) {
	p, err := publish.New(context.Background(), publish.Config{
		Kind: Kind,
		SQL:  publish.SQLConfig{Kind: sqlite.Kind, DSN: ":memory:"},
	})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Publish(context.Background(), report(t))
	require.NoError(t, err)
}
