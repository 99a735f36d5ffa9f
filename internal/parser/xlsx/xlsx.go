// Package xlsx decodes spreadsheet workbooks into tables using excelize.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"reportmerge/internal/table"
)

var (
	// ErrNoSheet is returned when the workbook has no sheets or the requested
	// sheet does not exist.
	ErrNoSheet = errors.New("xlsx: sheet not found")
	// ErrNoHeader is returned when every row of the sheet is blank.
	ErrNoHeader = errors.New("xlsx: missing header row")
)

// Options selects the sheet and cell handling.
type Options struct {
	// Sheet names the worksheet to read. Empty means the first sheet.
	Sheet string

	// TrimSpace trims leading/trailing whitespace from every cell.
	TrimSpace bool
}

// Decode reads one worksheet of the workbook in r. The first non-blank row is
// the header; every later non-blank row becomes a row padded or truncated to
// the header width. Cells are read as raw text so number formats do not leak
// into join keys.
func Decode(ctx context.Context, r io.Reader, name string, opt Options) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %s: %w", name, err)
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrNoSheet, name)
		}
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoSheet, sheet, name)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read %s/%s: %w", name, sheet, err)
	}
	defer rows.Close()

	var t *table.Table
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("xlsx: read %s/%s: %w", name, sheet, err)
		}
		if blank(cells) {
			continue
		}
		if t == nil {
			cols := make([]string, len(cells))
			for i, c := range cells {
				cols[i] = strings.TrimSpace(c)
			}
			t = table.New(name, cols)
			continue
		}
		row := make([]any, t.Width())
		for i := range row {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("xlsx: read %s/%s: %w", name, sheet, err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, name)
	}
	return t, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
