package ingest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reportmerge/internal/mapping"
	pcsv "reportmerge/internal/parser/csv"
)

func newLoader(t *testing.T) (*Loader, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	return New(log, Options{CSV: pcsv.Options{TrimSpace: true}}), hook
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func editWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Project ID", "100%"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"P1", 40}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

/*
TestLoadAll_MixedSources loads a CSV from disk, a TSV over HTTP and a workbook
from disk, and expects each decoded table to carry its source label.
*/
func TestLoadAll_MixedSources(t *testing.T) {
	dir := t.TempDir()
	xtm := writeFile(t, dir, "xtm.csv", []byte("Project ID;Project name\nP1; Alpha \n"))
	edit := writeFile(t, dir, "edit.xlsx", editWorkbook(t))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "order_id\tservice_type\nP1\tReview\n")
	}))
	defer srv.Close()

	l, hook := newLoader(t)
	in, err := l.LoadAll(context.Background(), map[mapping.SourceID]string{
		mapping.XTM:  xtm,
		mapping.TOS:  srv.URL + "/exports/tos.tsv",
		mapping.EDIT: edit,
	})
	require.NoError(t, err)
	require.True(t, in.Complete())

	assert.Equal(t, "XTM", in.XTM.Name)
	assert.Equal(t, [][]any{{"P1", "Alpha"}}, in.XTM.Rows)
	assert.Equal(t, []string{"order_id", "service_type"}, in.TOS.Columns)
	assert.Equal(t, "Edit Distance", in.EDIT.Name)
	assert.Equal(t, [][]any{{"P1", "40"}}, in.EDIT.Rows)

	assert.Len(t, hook.AllEntries(), 3)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestLoadAll_MissingLocation(t *testing.T) {
	l, _ := newLoader(t)
	_, err := l.LoadAll(context.Background(), map[mapping.SourceID]string{mapping.XTM: "a.csv"})
	require.ErrorIs(t, err, ErrMissingInput)
}

func TestLoadAll_FirstErrorWins(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.csv", []byte("a\n1\n"))

	l, _ := newLoader(t)
	_, err := l.LoadAll(context.Background(), map[mapping.SourceID]string{
		mapping.XTM:  ok,
		mapping.TOS:  filepath.Join(dir, "missing.csv"),
		mapping.EDIT: ok,
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_UnsupportedExtension(t *testing.T) {
	l, _ := newLoader(t)
	_, err := l.Decode(context.Background(), bytes.NewReader(nil), "report.xls", mapping.XTM)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(context.Background(), mapping.XTM, l.Source("report.pdf"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSupported(t *testing.T) {
	for name, want := range map[string]bool{
		"a.csv": true, "a.TSV": true, "a.txt": true, "a.xlsx": true, "a.xlsm": true,
		"a.xls": false, "a": false,
	} {
		assert.Equal(t, want, Supported(name), name)
	}
}
