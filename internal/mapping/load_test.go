package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProfile = `
name: Small
columns:
  - {name: Status, type: static, value: Done}
  - {name: ID, source: xtm, column: Project ID}
  - {name: Service, type: direct, source: TOS, column: service_type}
  - {name: M, source: EDIT, column: "50%-74%"}
  - {name: N, source: EDIT, column: "75%-84%"}
  - {name: Total, type: formula, columns: [M, N]}
join_keys:
  - {primary_key: Project ID, secondary: TOS, secondary_key: order_id}
validation:
  XTM: [Project ID]
  tos: [order_id, service_type]
`

func TestLoad_Profile(t *testing.T) {
	cfg, err := Load(strings.NewReader(sampleProfile))
	require.NoError(t, err)

	assert.Equal(t, "Small", cfg.Name())
	assert.Equal(t, XTM, cfg.Primary())
	assert.Equal(t, []string{"Status", "ID", "Service", "M", "N", "Total"}, cfg.ColumnNames())

	outs := cfg.Outputs()
	assert.Equal(t, Constant{Value: "Done"}, outs[0].Spec)
	assert.Equal(t, DirectRef{Source: XTM, Column: "Project ID"}, outs[1].Spec)
	assert.Equal(t, DerivedSum{Columns: []string{"M", "N"}}, outs[5].Spec)

	require.Len(t, cfg.Joins(), 1)
	assert.Equal(t, JoinSpec{PrimaryKey: "Project ID", Secondary: TOS, SecondaryKey: "order_id"}, cfg.Joins()[0])
	assert.Equal(t, []string{"order_id", "service_type"}, cfg.Required(TOS))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown_type", "columns: [{name: A, type: lookup}]", ErrUnknownSpecKind},
		{"unknown_formula", "columns: [{name: A, type: formula, formula: avg, columns: []}]", ErrUnknownSpecKind},
		{"forward_ref", "columns: [{name: T, type: formula, columns: [A]}, {name: A, type: static, value: 1}]", ErrForwardReference},
		{"bad_source", "columns: [{name: A, source: CRM, column: x}]", ErrUnknownSource},
		{"empty", "name: nothing", ErrEmptyConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.doc))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "small.yaml"), []byte(sampleProfile), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unnamed.yml"),
		[]byte("columns: [{name: A, type: static, value: x}]"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	reg := NewRegistry()
	require.NoError(t, reg.LoadDir(dir))
	assert.Equal(t, []string{IndeedStandardName, "Small", "unnamed"}, reg.Names())

	cfg, err := reg.Get("Small")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Width())

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
