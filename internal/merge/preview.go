package merge

import (
	"math"
	"strings"

	"reportmerge/internal/table"
)

// ColumnStat counts filled and empty cells of one output column.
type ColumnStat struct {
	Name          string  `json:"name"`
	NonEmpty      int     `json:"non_empty"`
	Empty         int     `json:"empty"`
	PercentFilled float64 `json:"percentage_filled"`
}

// Summary describes a merged report for display.
type Summary struct {
	TotalRows     int          `json:"total_rows"`
	TotalColumns  int          `json:"total_columns"`
	ColumnNames   []string     `json:"column_names"`
	Head          *table.Table `json:"-"`
	Stats         []ColumnStat `json:"column_statistics"`
	HasEmptyCells bool         `json:"has_empty_cells"`
}

// Preview summarizes out and keeps its first n rows. A cell is empty when
// its rendered text is blank.
func Preview(out *table.Table, n int) Summary {
	s := Summary{
		TotalRows:    out.Len(),
		TotalColumns: out.Width(),
		Head:         out.Head(n),
	}
	if out == nil {
		return s
	}
	s.ColumnNames = append([]string(nil), out.Columns...)
	s.Stats = make([]ColumnStat, len(out.Columns))
	for c, name := range out.Columns {
		st := ColumnStat{Name: name}
		for _, row := range out.Rows {
			if strings.TrimSpace(table.Text(row[c])) != "" {
				st.NonEmpty++
			}
		}
		st.Empty = len(out.Rows) - st.NonEmpty
		if len(out.Rows) > 0 {
			st.PercentFilled = math.Round(float64(st.NonEmpty)/float64(len(out.Rows))*1000) / 10
		}
		if st.Empty > 0 {
			s.HasEmptyCells = true
		}
		s.Stats[c] = st
	}
	return s
}
