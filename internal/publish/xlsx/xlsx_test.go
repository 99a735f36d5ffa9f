package xlsx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reportmerge/internal/merge"
	"reportmerge/internal/publish"
	"reportmerge/internal/table"
)

func report(t *testing.T) publish.Report {
	t.Helper()
	xtm := table.New("XTM", []string{"Project ID"})
	xtm.Append("P1")
	out := table.New("Indeed_Standard", []string{"B_Project_ID", "Q_Total_Words"})
	out.Append("P1", 12.5)
	in := merge.Inputs{XTM: xtm, TOS: table.New("TOS", []string{"order_id"}), EDIT: table.New("Edit Distance", nil)}
	return publish.NewReport("Weekly / report", in, merge.Result{Output: out}, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestPublish_WritesWorkbook(t *testing.T) {
	log, _ := test.NewNullLogger()
	dir := t.TempDir()
	p := New(publish.XLSXConfig{Dir: dir}, log)
	r := report(t)

	rec, err := p.Publish(context.Background(), r)
	require.NoError(t, err)

	path := filepath.Join(dir, "Weekly___report.xlsx")
	assert.Equal(t, publish.Receipt{
		Kind: Kind, Location: path, ID: r.Fingerprint(), Name: "Weekly / report",
		Tabs: 5, TotalRows: 2, MergedRows: 1, MergedColumns: 2,
	}, rec)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{publish.TabMerged, publish.TabValidation, publish.TabXTM, publish.TabTOS, publish.TabEdit}, f.GetSheetList())

	rows, err := f.GetRows(publish.TabMerged)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"B_Project_ID", "Q_Total_Words"}, {"P1", "12.5"}}, rows)

	v, err := f.GetCellValue(publish.TabValidation, "A11")
	require.NoError(t, err)
	assert.Equal(t, "VALIDATION WARNINGS", v)
}

func TestPublish_ExplicitPath(t *testing.T) {
	log, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "nested", "out.xlsx")

	rec, err := New(publish.XLSXConfig{Path: path}, log).Publish(context.Background(), report(t))
	require.NoError(t, err)
	assert.Equal(t, path, rec.Location)
	assert.FileExists(t, path)
}

func TestPublish_ViaRegistry(t *testing.T) {
	p, err := publish.New(context.Background(), publish.Config{Kind: Kind, XLSX: publish.XLSXConfig{Dir: t.TempDir()}})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Publish(context.Background(), report(t))
	require.NoError(t, err)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "Indeed_Report_20250101", safeName("Indeed_Report_20250101"))
	assert.Equal(t, "a_b", safeName("a b"))
	assert.Equal(t, "report", safeName(""))
}
