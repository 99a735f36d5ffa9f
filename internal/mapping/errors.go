package mapping

import "errors"

// Configuration errors. They are returned by New and Load and never occur at
// merge time.
var (
	ErrEmptyConfig      = errors.New("mapping: no output columns")
	ErrEmptyColumnName  = errors.New("mapping: empty output column name")
	ErrDuplicateColumn  = errors.New("mapping: duplicate output column")
	ErrUnknownColumn    = errors.New("mapping: derived column references unknown output column")
	ErrForwardReference = errors.New("mapping: derived column references a later output column")
	ErrInvalidJoin      = errors.New("mapping: invalid join spec")
	ErrUnknownSource    = errors.New("mapping: unknown source")
	ErrUnknownSpecKind  = errors.New("mapping: unknown column spec kind")
	ErrProfileNotFound  = errors.New("mapping: profile not found")
)
