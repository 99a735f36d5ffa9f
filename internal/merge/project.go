package merge

import (
	"github.com/shopspring/decimal"

	"reportmerge/internal/mapping"
	"reportmerge/internal/table"
)

// Project builds the fixed-schema report from the joined table.
//
// Output columns are produced in configuration order so a DerivedSum sees
// the values of the columns before it. A DirectRef whose column cannot be
// resolved yields an all-empty column without error. The result always has
// exactly cfg.ColumnNames(), in order, and never holds nil cells.
func Project(joined *table.Table, cfg *mapping.Config) *table.Table {
	n := joined.Len()
	outputs := cfg.Outputs()

	built := make(map[string][]any, len(outputs))
	for _, oc := range outputs {
		col := make([]any, n)
		switch spec := oc.Spec.(type) {
		case mapping.Constant:
			for r := range col {
				col[r] = spec.Value
			}

		case mapping.DirectRef:
			if joined != nil {
				if name, ok := resolveTagged(joined.Columns, spec.Column, spec.Source); ok {
					idx := joined.Index(name)
					for r, row := range joined.Rows {
						col[r] = row[idx]
					}
				}
			}

		case mapping.DerivedSum:
			for r := range col {
				sum := decimal.Zero
				for _, ref := range spec.Columns {
					if src, ok := built[ref]; ok {
						sum = sum.Add(toDecimal(src[r]))
					}
				}
				col[r] = sum.InexactFloat64()
			}
		}
		built[oc.Name] = col
	}

	return reproject(cfg.Name(), cfg.ColumnNames(), built, n)
}

// reproject lays the built columns out in exactly the requested order,
// backfilling absent columns and nil cells with "".
func reproject(name string, columns []string, built map[string][]any, n int) *table.Table {
	out := table.New(name, columns)
	out.Rows = make([][]any, n)
	for r := 0; r < n; r++ {
		row := make([]any, len(columns))
		for c, colName := range columns {
			var v any
			if vals, ok := built[colName]; ok {
				v = vals[r]
			}
			if v == nil {
				v = ""
			}
			row[c] = v
		}
		out.Rows[r] = row
	}
	return out
}
