package validate

import (
	"fmt"

	"reportmerge/internal/mapping"
	"reportmerge/internal/schema"
	"reportmerge/internal/table"
)

// Validate checks the three exports against cfg. See ValidateSources.
func Validate(xtm, tos, edit *table.Table, cfg *mapping.Config) []Warning {
	return ValidateSources(map[mapping.SourceID]*table.Table{
		mapping.XTM:  xtm,
		mapping.TOS:  tos,
		mapping.EDIT: edit,
	}, cfg)
}

// ValidateSources runs every check and returns the accumulated warnings in a
// stable order:
//
//  1. required columns that cannot be resolved, per source
//  2. empty sources
//  3. row count differences between the primary and each secondary
//  4. join keys that cannot be resolved on either side
//
// A nil table is treated as an empty table with no columns. The inputs are
// not modified.
func ValidateSources(sources map[mapping.SourceID]*table.Table, cfg *mapping.Config) []Warning {
	var ws []Warning

	for _, src := range mapping.Sources {
		t := sources[src]
		for _, col := range cfg.Required(src) {
			if _, ok := schema.Resolve(t, col); ok {
				continue
			}
			ws = Append(ws, Warning{
				Kind:   KindMissingColumn,
				Source: src,
				Column: col,
				Detail: fmt.Sprintf("%s file may be missing expected column: '%s' (will use empty values)", src.Label(), col),
			})
		}
	}

	for _, src := range mapping.Sources {
		if sources[src].Len() == 0 {
			ws = Append(ws, Warning{
				Kind:   KindEmptyTable,
				Source: src,
				Detail: fmt.Sprintf("%s file appears to be empty", src.Label()),
			})
		}
	}

	primary := cfg.Primary()
	pn := sources[primary].Len()
	for _, src := range cfg.Secondaries() {
		if sn := sources[src].Len(); sn != pn {
			ws = Append(ws, Warning{
				Kind:   KindRowCountMismatch,
				Source: src,
				Detail: fmt.Sprintf("Row count mismatch: %s has %d rows, %s has %d rows", primary.Label(), pn, src.Label(), sn),
			})
		}
	}

	for _, j := range cfg.Joins() {
		if _, ok := schema.Resolve(sources[primary], j.PrimaryKey); !ok {
			ws = Append(ws, joinKeyWarning(primary, j.PrimaryKey))
		}
		if _, ok := schema.Resolve(sources[j.Secondary], j.SecondaryKey); !ok {
			ws = Append(ws, joinKeyWarning(j.Secondary, j.SecondaryKey))
		}
	}

	return ws
}

func joinKeyWarning(src mapping.SourceID, key string) Warning {
	return Warning{
		Kind:   KindJoinKeyMissing,
		Source: src,
		Column: key,
		Detail: fmt.Sprintf("%s join key '%s' not found - rows may not align properly", src.Label(), key),
	}
}
