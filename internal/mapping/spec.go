// Package mapping holds the declarative description of the merged report:
// which output columns exist and in what order, how each one is filled, how
// the secondary exports attach to the primary one, and which source columns
// are expected to be present.
//
// A Config is built once (from a built-in profile or a YAML profile file),
// validated up front, and is read-only afterwards. It is safe to share across
// concurrent merges.
package mapping

import (
	"fmt"
	"strings"
)

// SourceID identifies one of the upstream exports.
type SourceID string

const (
	// XTM is the project metadata export. It is the primary table.
	XTM SourceID = "XTM"
	// TOS is the order metadata export.
	TOS SourceID = "TOS"
	// EDIT is the word-count / match-rate (edit distance) export.
	EDIT SourceID = "EDIT"
)

// Sources lists the known sources in report order.
var Sources = []SourceID{XTM, TOS, EDIT}

// Label is the human readable name used in warnings and tab titles.
func (s SourceID) Label() string {
	switch s {
	case XTM:
		return "XTM"
	case TOS:
		return "TOS"
	case EDIT:
		return "Edit Distance"
	}
	return string(s)
}

// Tag is the lowercase suffix used to disambiguate colliding join columns.
func (s SourceID) Tag() string { return strings.ToLower(string(s)) }

// Valid reports whether s is a known source.
func (s SourceID) Valid() bool {
	for _, k := range Sources {
		if s == k {
			return true
		}
	}
	return false
}

// ParseSource accepts a source id case-insensitively ("xtm", "Edit").
func ParseSource(s string) (SourceID, error) {
	id := SourceID(strings.ToUpper(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
	return id, nil
}

// ColumnSpec describes how one output column is populated. The set of
// implementations is closed: Constant, DirectRef and DerivedSum.
type ColumnSpec interface {
	columnSpec()
	// Kind is the profile-file spelling of the variant.
	Kind() string
}

// Constant fills every row with the same literal.
type Constant struct {
	Value any
}

// DirectRef copies a column of the joined table, resolved by canonical label.
type DirectRef struct {
	Source SourceID
	Column string
}

// DerivedSum adds up earlier output columns row by row.
type DerivedSum struct {
	Columns []string
}

func (Constant) columnSpec()   {}
func (DirectRef) columnSpec()  {}
func (DerivedSum) columnSpec() {}

func (Constant) Kind() string   { return "static" }
func (DirectRef) Kind() string  { return "direct" }
func (DerivedSum) Kind() string { return "formula" }

// OutputColumn is one named column of the report.
type OutputColumn struct {
	Name string
	Spec ColumnSpec
}

// JoinSpec attaches Secondary to the accumulated table on
// PrimaryKey = SecondaryKey. Order matters: later joins see columns added by
// earlier ones.
type JoinSpec struct {
	PrimaryKey   string
	Secondary    SourceID
	SecondaryKey string
}
