// Package validate inspects the raw exports against a mapping configuration
// and reports advisory warnings.
//
// Validation never blocks a merge: a partially empty report is preferred over
// a failed run, so every finding is a Warning and all of them are collected.
package validate

import "reportmerge/internal/mapping"

// Kind classifies a Warning.
type Kind string

const (
	KindMissingColumn    Kind = "missing_column"
	KindEmptyTable       Kind = "empty_table"
	KindRowCountMismatch Kind = "row_count_mismatch"
	KindJoinKeyMissing   Kind = "join_key_missing"
	// KindJoinSkipped is reported by the join engine when a join step could
	// not run against the accumulated table.
	KindJoinSkipped Kind = "join_skipped"
)

// Warning is one advisory finding. Detail is safe to render verbatim.
type Warning struct {
	Kind   Kind
	Source mapping.SourceID
	Column string
	Detail string
}

// String implements fmt.Stringer.
func (w Warning) String() string { return w.Detail }

// Strings renders warnings as flat text, preserving order.
func Strings(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Detail
	}
	return out
}

// Append adds w unless an identical warning is already present. An
// unresolved join key is reported once per source and column, whether the
// validator or the join engine found it first.
func Append(ws []Warning, w Warning) []Warning {
	for _, have := range ws {
		if have == w {
			return ws
		}
		if joinKey(have.Kind) && joinKey(w.Kind) && have.Source == w.Source && have.Column == w.Column {
			return ws
		}
	}
	return append(ws, w)
}

func joinKey(k Kind) bool { return k == KindJoinKeyMissing || k == KindJoinSkipped }
