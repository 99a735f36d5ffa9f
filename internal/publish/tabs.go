package publish

import (
	"fmt"
	"strings"

	"reportmerge/internal/mapping"
	"reportmerge/internal/table"
)

// Tab names in workbook order.
const (
	TabMerged     = "Merged_Report"
	TabValidation = "Validation_Log"
	TabXTM        = "XTM_Raw"
	TabTOS        = "TOS_Raw"
	TabEdit       = "Edit_Distance_Raw"
)

// Header colours, as #rrggbb.
const (
	colorMerged     = "#0066cc"
	colorValidation = "#f2f2f2"
	colorXTM        = "#e3f2fd"
	colorTOS        = "#f0fdf4"
	colorEdit       = "#fef3c7"
)

// mappingStatusLimit caps the column mapping section of the validation log.
const mappingStatusLimit = 10

// Tab is one worksheet: a grid whose first row is a header when HasHeader is
// set. Emphasis lists the 0-based rows to render bold on Color.
type Tab struct {
	Name      string
	Grid      [][]any
	HasHeader bool
	Emphasis  []int
	Color     string
	// LightText renders emphasized rows in white.
	LightText bool
}

// Width returns the widest row of the grid.
func (t Tab) Width() int {
	w := 0
	for _, r := range t.Grid {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Tabs builds the five report tabs. Cells keep their types; nil becomes "".
func Tabs(r Report) []Tab {
	return []Tab{
		gridTab(TabMerged, r.Output, colorMerged, true),
		validationTab(r),
		gridTab(TabXTM, r.Sources[mapping.XTM], colorXTM, false),
		gridTab(TabTOS, r.Sources[mapping.TOS], colorTOS, false),
		gridTab(TabEdit, r.Sources[mapping.EDIT], colorEdit, false),
	}
}

func gridTab(name string, t *table.Table, color string, light bool) Tab {
	tab := Tab{Name: name, HasHeader: true, Emphasis: []int{0}, Color: color, LightText: light}
	if t == nil {
		tab.Grid = [][]any{{}}
		return tab
	}
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tab.Grid = make([][]any, 0, t.Len()+1)
	tab.Grid = append(tab.Grid, header)
	for _, row := range t.Rows {
		out := make([]any, len(row))
		for i, v := range row {
			if v == nil {
				v = ""
			}
			out[i] = v
		}
		tab.Grid = append(tab.Grid, out)
	}
	return tab
}

// validationTab lays out the statistics, warnings and column mapping blocks.
func validationTab(r Report) Tab {
	var (
		grid     [][]any
		emphasis []int
	)
	add := func(cells ...any) { grid = append(grid, cells) }
	title := func(s string) {
		emphasis = append(emphasis, len(grid))
		add(s, "", "", "")
	}
	blank := func() { add("", "", "", "") }

	title("Validation Report")
	add("Generated", r.Generated.Format("2006-01-02 15:04:05"), "", "")
	blank()

	title("FILE STATISTICS")
	add("File Type", "Records", "Columns", "Status")
	stat := func(label string, t *table.Table, status string) {
		add(label, fmt.Sprint(t.Len()), fmt.Sprint(t.Width()), status)
	}
	stat("XTM Export", r.Sources[mapping.XTM], "✓ Loaded")
	stat("TOS Export", r.Sources[mapping.TOS], "✓ Loaded")
	stat("Edit Distance", r.Sources[mapping.EDIT], "✓ Loaded")
	stat("Merged Output", r.Output, "✓ Created")
	blank()

	title("VALIDATION WARNINGS")
	add("Warning Type", "Description", "Impact", "Action")
	if len(r.Warnings) == 0 {
		add("None", "All validations passed", "None", "No action required")
	}
	for _, w := range r.Warnings {
		add("Warning", w.Detail, "Non-critical", "Review if needed")
	}
	blank()

	title("COLUMN MAPPING STATUS")
	add("Output Column", "Source", "Status", "Notes")
	if r.Output != nil {
		cols := r.Output.Columns
		if len(cols) > mappingStatusLimit {
			cols = cols[:mappingStatusLimit]
		}
		for i, c := range cols {
			n := 0
			for _, row := range r.Output.Rows {
				if strings.TrimSpace(table.Text(row[i])) != "" {
					n++
				}
			}
			if n > 0 {
				add(c, "Mapped", "✓", fmt.Sprintf("%d values", n))
			} else {
				add(c, "Empty", "⚠", "No data mapped")
			}
		}
	}

	return Tab{Name: TabValidation, Grid: grid, Emphasis: emphasis, Color: colorValidation}
}

// ColumnLetter converts a 1-based column number to its spreadsheet letters:
// 1 is A, 26 is Z, 27 is AA. Non-positive n gives "".
func ColumnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// A1Range returns the range covering cols columns and rows rows from A1,
// e.g. A1:AG12. Empty grids give "A1".
func A1Range(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return "A1"
	}
	return fmt.Sprintf("A1:%s%d", ColumnLetter(cols), rows)
}
