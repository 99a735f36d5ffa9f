package mapping

import (
	"fmt"
	"strings"
)

// Config is an immutable, validated mapping configuration.
type Config struct {
	name     string
	primary  SourceID
	outputs  []OutputColumn
	joins    []JoinSpec
	required map[SourceID][]string
}

// Definition is the mutable input to New.
type Definition struct {
	Name     string
	Primary  SourceID
	Outputs  []OutputColumn
	Joins    []JoinSpec
	Required map[SourceID][]string
}

// New validates def and returns a Config that owns private copies of every
// slice and map. Primary defaults to XTM.
func New(def Definition) (*Config, error) {
	if len(def.Outputs) == 0 {
		return nil, ErrEmptyConfig
	}
	primary := def.Primary
	if primary == "" {
		primary = XTM
	}
	if !primary.Valid() {
		return nil, fmt.Errorf("%w: primary %q", ErrUnknownSource, primary)
	}

	pos := make(map[string]int, len(def.Outputs))
	outputs := make([]OutputColumn, 0, len(def.Outputs))
	for i, oc := range def.Outputs {
		name := strings.TrimSpace(oc.Name)
		if name == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyColumnName, i)
		}
		if _, dup := pos[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		spec, err := checkSpec(name, oc.Spec, pos, def.Outputs)
		if err != nil {
			return nil, err
		}
		pos[name] = i
		outputs = append(outputs, OutputColumn{Name: name, Spec: spec})
	}

	joins := make([]JoinSpec, 0, len(def.Joins))
	for i, j := range def.Joins {
		if strings.TrimSpace(j.PrimaryKey) == "" || strings.TrimSpace(j.SecondaryKey) == "" {
			return nil, fmt.Errorf("%w: join %d has an empty key", ErrInvalidJoin, i)
		}
		if !j.Secondary.Valid() {
			return nil, fmt.Errorf("%w: join %d secondary %q", ErrUnknownSource, i, j.Secondary)
		}
		if j.Secondary == primary {
			return nil, fmt.Errorf("%w: join %d attaches the primary source to itself", ErrInvalidJoin, i)
		}
		joins = append(joins, j)
	}

	required := make(map[SourceID][]string, len(def.Required))
	for src, cols := range def.Required {
		if !src.Valid() {
			return nil, fmt.Errorf("%w: required columns for %q", ErrUnknownSource, src)
		}
		required[src] = append([]string(nil), cols...)
	}

	return &Config{
		name:     def.Name,
		primary:  primary,
		outputs:  outputs,
		joins:    joins,
		required: required,
	}, nil
}

// MustNew is New for static definitions that are known to be valid.
func MustNew(def Definition) *Config {
	c, err := New(def)
	if err != nil {
		panic(err)
	}
	return c
}

func checkSpec(name string, spec ColumnSpec, built map[string]int, all []OutputColumn) (ColumnSpec, error) {
	switch s := spec.(type) {
	case Constant:
		return s, nil
	case DirectRef:
		if strings.TrimSpace(s.Column) == "" {
			return nil, fmt.Errorf("%w: %q has an empty source column", ErrUnknownColumn, name)
		}
		if s.Source != "" && !s.Source.Valid() {
			return nil, fmt.Errorf("%w: %q reads from %q", ErrUnknownSource, name, s.Source)
		}
		return s, nil
	case DerivedSum:
		for _, ref := range s.Columns {
			if _, ok := built[ref]; ok {
				continue
			}
			// The column itself is not built yet, so a self-reference lands here.
			for _, later := range all {
				if later.Name == ref {
					return nil, fmt.Errorf("%w: %q uses %q", ErrForwardReference, name, ref)
				}
			}
			return nil, fmt.Errorf("%w: %q uses %q", ErrUnknownColumn, name, ref)
		}
		return DerivedSum{Columns: append([]string(nil), s.Columns...)}, nil
	case nil:
		return nil, fmt.Errorf("%w: %q has no spec", ErrUnknownSpecKind, name)
	default:
		return nil, fmt.Errorf("%w: %q has %T", ErrUnknownSpecKind, name, spec)
	}
}

// Name is the profile name.
func (c *Config) Name() string { return c.name }

// Primary is the source whose rows anchor the join.
func (c *Config) Primary() SourceID { return c.primary }

// Outputs returns the output columns in report order.
func (c *Config) Outputs() []OutputColumn {
	return append([]OutputColumn(nil), c.outputs...)
}

// ColumnNames returns the output schema in report order.
func (c *Config) ColumnNames() []string {
	out := make([]string, len(c.outputs))
	for i, oc := range c.outputs {
		out[i] = oc.Name
	}
	return out
}

// Width is the number of output columns.
func (c *Config) Width() int { return len(c.outputs) }

// Joins returns the join specs in execution order.
func (c *Config) Joins() []JoinSpec {
	return append([]JoinSpec(nil), c.joins...)
}

// Required returns the expected columns of src.
func (c *Config) Required(src SourceID) []string {
	return append([]string(nil), c.required[src]...)
}

// Secondaries lists the non-primary sources in report order.
func (c *Config) Secondaries() []SourceID {
	out := make([]SourceID, 0, len(Sources)-1)
	for _, s := range Sources {
		if s != c.primary {
			out = append(out, s)
		}
	}
	return out
}
