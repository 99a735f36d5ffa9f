// Package merge is the column-mapping merge engine. It joins the project,
// order and word-count exports on configurable keys and projects the result
// into the fixed report schema of a mapping.Config.
//
// Merge is a pure function of its inputs: it performs no I/O, never mutates
// the input tables, and never fails on data-shape problems. Those are
// reported as validate.Warning values next to a complete, fixed-width
// output table.
package merge

import (
	"reportmerge/internal/mapping"
	"reportmerge/internal/table"
	"reportmerge/internal/validate"
)

// Inputs are the three raw exports of one merge.
type Inputs struct {
	XTM  *table.Table
	TOS  *table.Table
	EDIT *table.Table
}

// Get returns the table of src.
func (in Inputs) Get(src mapping.SourceID) *table.Table {
	switch src {
	case mapping.XTM:
		return in.XTM
	case mapping.TOS:
		return in.TOS
	case mapping.EDIT:
		return in.EDIT
	}
	return nil
}

// Set replaces the table of src.
func (in *Inputs) Set(src mapping.SourceID, t *table.Table) {
	switch src {
	case mapping.XTM:
		in.XTM = t
	case mapping.TOS:
		in.TOS = t
	case mapping.EDIT:
		in.EDIT = t
	}
}

// Sources returns the inputs keyed by source.
func (in Inputs) Sources() map[mapping.SourceID]*table.Table {
	return map[mapping.SourceID]*table.Table{
		mapping.XTM:  in.XTM,
		mapping.TOS:  in.TOS,
		mapping.EDIT: in.EDIT,
	}
}

// Complete reports whether all three exports are present.
func (in Inputs) Complete() bool {
	return in.XTM != nil && in.TOS != nil && in.EDIT != nil
}

// Result is the outcome of one merge. The caller owns both fields.
type Result struct {
	Output   *table.Table
	Warnings []validate.Warning
}

// Messages renders the warnings as flat text.
func (r Result) Messages() []string { return validate.Strings(r.Warnings) }

// Merge validates the inputs, joins the secondaries onto the primary export
// and projects the joined rows into cfg's report schema.
//
// Warnings hold the validator findings followed by any join step that had to
// be skipped.
func Merge(in Inputs, cfg *mapping.Config) Result {
	sources := in.Sources()
	ws := validate.ValidateSources(sources, cfg)

	secondaries := make(map[mapping.SourceID]*table.Table, 2)
	for _, s := range cfg.Secondaries() {
		secondaries[s] = sources[s]
	}
	joined, jws := Join(sources[cfg.Primary()], secondaries, cfg.Primary(), cfg.Joins())
	for _, w := range jws {
		ws = validate.Append(ws, w)
	}

	return Result{
		Output:   Project(joined, cfg),
		Warnings: ws,
	}
}
