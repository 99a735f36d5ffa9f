// Package schema reconciles loosely specified column labels across exports.
//
// Upstream tools rename, re-case and re-space their headers between releases
// ("Project ID", "project_id", " PROJECT  ID "). Labels are therefore never
// compared verbatim; both sides are reduced to a canonical form first and the
// first matching column wins.
package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"reportmerge/internal/table"
)

// Delimiter replaces internal whitespace runs in canonical labels.
const Delimiter = "_"

// Normalize returns the canonical comparison form of a column label:
// NFC-composed, case-folded, trimmed, with every internal whitespace run
// replaced by a single Delimiter. It is total and idempotent.
func Normalize(label string) string {
	if label == "" {
		return ""
	}
	// cases.Caser is stateful; build one per call so Normalize stays safe for
	// concurrent use.
	s := norm.NFC.String(cases.Fold().String(norm.NFC.String(label)))
	return strings.Join(strings.Fields(s), Delimiter)
}

// Resolve returns the first column of t whose canonical form equals the
// canonical form of desired.
func Resolve(t *table.Table, desired string) (string, bool) {
	if t == nil {
		return "", false
	}
	return ResolveColumns(t.Columns, desired)
}

// ResolveColumns is Resolve over a bare column list.
func ResolveColumns(columns []string, desired string) (string, bool) {
	want := Normalize(desired)
	for _, c := range columns {
		if Normalize(c) == want {
			return c, true
		}
	}
	return "", false
}

// Resolver is a precomputed index for repeated lookups against one column
// list. Ties resolve to the first column in list order, as with Resolve.
type Resolver struct {
	index map[string]string
}

// NewResolver indexes columns by canonical label.
func NewResolver(columns []string) *Resolver {
	idx := make(map[string]string, len(columns))
	for _, c := range columns {
		k := Normalize(c)
		if _, seen := idx[k]; !seen {
			idx[k] = c
		}
	}
	return &Resolver{index: idx}
}

// Lookup resolves desired to an actual column name.
func (r *Resolver) Lookup(desired string) (string, bool) {
	c, ok := r.index[Normalize(desired)]
	return c, ok
}
