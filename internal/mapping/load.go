package mapping

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// profileFile is the YAML shape of a profile:
//
//	name: Indeed_Standard
//	primary: XTM
//	columns:
//	  - {name: A_Status, type: static, value: Translated}
//	  - {name: B_Project_ID, type: direct, source: XTM, column: Project ID}
//	  - {name: Q_Total_Words, type: formula, formula: sum_columns, columns: [M, N]}
//	join_keys:
//	  - {primary_key: Project ID, secondary: TOS, secondary_key: order_id}
//	validation:
//	  XTM: [Project ID]
type profileFile struct {
	Name       string              `yaml:"name"`
	Primary    string              `yaml:"primary" default:"XTM"`
	Columns    []columnEntry       `yaml:"columns"`
	JoinKeys   []joinEntry         `yaml:"join_keys"`
	Validation map[string][]string `yaml:"validation"`
}

type columnEntry struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type" default:"direct"`
	Value   any      `yaml:"value"`
	Source  string   `yaml:"source"`
	Column  string   `yaml:"column"`
	Formula string   `yaml:"formula" default:"sum_columns"`
	Columns []string `yaml:"columns"`
}

type joinEntry struct {
	PrimaryKey   string `yaml:"primary_key"`
	Secondary    string `yaml:"secondary"`
	SecondaryKey string `yaml:"secondary_key"`
}

// UnmarshalYAML applies struct defaults before decoding each column entry.
func (c *columnEntry) UnmarshalYAML(node *yaml.Node) error {
	type plain columnEntry
	var p plain
	if err := defaults.Set(&p); err != nil {
		return err
	}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = columnEntry(p)
	return nil
}

// Load decodes a YAML profile and validates it with New.
func Load(r io.Reader) (*Config, error) {
	var pf profileFile
	if err := defaults.Set(&pf); err != nil {
		return nil, fmt.Errorf("mapping: defaults: %w", err)
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("mapping: decode profile: %w", err)
	}
	def, err := pf.definition()
	if err != nil {
		return nil, err
	}
	return New(def)
}

// LoadFile reads a YAML profile from disk.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path) //nolint:gosec // operator-supplied profile path
	if err != nil {
		return nil, fmt.Errorf("mapping: read %s: %w", path, err)
	}
	cfg, err := Load(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (pf profileFile) definition() (Definition, error) {
	primary, err := ParseSource(pf.Primary)
	if err != nil {
		return Definition{}, err
	}
	def := Definition{
		Name:     pf.Name,
		Primary:  primary,
		Required: map[SourceID][]string{},
	}
	for _, ce := range pf.Columns {
		spec, err := ce.spec()
		if err != nil {
			return Definition{}, err
		}
		def.Outputs = append(def.Outputs, OutputColumn{Name: ce.Name, Spec: spec})
	}
	for _, je := range pf.JoinKeys {
		sec, err := ParseSource(je.Secondary)
		if err != nil {
			return Definition{}, err
		}
		def.Joins = append(def.Joins, JoinSpec{
			PrimaryKey:   je.PrimaryKey,
			Secondary:    sec,
			SecondaryKey: je.SecondaryKey,
		})
	}
	for src, cols := range pf.Validation {
		id, err := ParseSource(src)
		if err != nil {
			return Definition{}, err
		}
		def.Required[id] = cols
	}
	return def, nil
}

func (ce columnEntry) spec() (ColumnSpec, error) {
	switch strings.ToLower(ce.Type) {
	case "static", "constant":
		return Constant{Value: ce.Value}, nil
	case "direct":
		var src SourceID
		if ce.Source != "" {
			id, err := ParseSource(ce.Source)
			if err != nil {
				return nil, err
			}
			src = id
		}
		return DirectRef{Source: src, Column: ce.Column}, nil
	case "formula":
		if ce.Formula != "sum_columns" {
			return nil, fmt.Errorf("%w: %q formula %q", ErrUnknownSpecKind, ce.Name, ce.Formula)
		}
		return DerivedSum{Columns: ce.Columns}, nil
	}
	return nil, fmt.Errorf("%w: %q type %q", ErrUnknownSpecKind, ce.Name, ce.Type)
}
