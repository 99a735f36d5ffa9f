package xlsx_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	pxlsx "reportmerge/internal/parser/xlsx"
)

// workbook builds an in-memory workbook whose first sheet holds rows.
func workbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := r
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestDecode_FirstSheet(t *testing.T) {
	buf := workbook(t, "Export", [][]any{
		{nil, nil},
		{"Project ID", " Project name "},
		{"P1", "Alpha"},
		{"P2"},
		{nil, nil},
		{"P3", " Gamma "},
	})

	tb, err := pxlsx.Decode(context.Background(), buf, "XTM", pxlsx.Options{TrimSpace: true})
	require.NoError(t, err)

	assert.Equal(t, "XTM", tb.Name)
	assert.Equal(t, []string{"Project ID", "Project name"}, tb.Columns)
	assert.Equal(t, [][]any{{"P1", "Alpha"}, {"P2", ""}, {"P3", "Gamma"}}, tb.Rows)
}

func TestDecode_NumbersStayRaw(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]any{{"id", "words"}, {1001, 12.5}})

	tb, err := pxlsx.Decode(context.Background(), buf, "t", pxlsx.Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"1001", "12.5"}}, tb.Rows)
}

func TestDecode_NamedSheet(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]any{{"a"}, {"1"}})

	_, err := pxlsx.Decode(context.Background(), buf, "t", pxlsx.Options{Sheet: "Missing"})
	require.ErrorIs(t, err, pxlsx.ErrNoSheet)
}

func TestDecode_EmptySheet(t *testing.T) {
	buf := workbook(t, "Sheet1", nil)

	_, err := pxlsx.Decode(context.Background(), buf, "t", pxlsx.Options{})
	require.ErrorIs(t, err, pxlsx.ErrNoHeader)
}

func TestDecode_NotAWorkbook(t *testing.T) {
	_, err := pxlsx.Decode(context.Background(), bytes.NewBufferString("a,b\n"), "t", pxlsx.Options{})
	require.Error(t, err)
}
