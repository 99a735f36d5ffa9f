package ddl

// ColumnDef describes a single column of a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Type: logical type, rendered per dialect
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	Type       Type
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name (FQN, dotted form allowed) and an ordered
// list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Type is a dialect-neutral column type.
type Type int

const (
	Text Type = iota
	Real
	Integer
	// Key is short text usable in a primary key.
	Key
)

func (t Type) String() string {
	switch t {
	case Real:
		return "real"
	case Integer:
		return "integer"
	case Key:
		return "key"
	}
	return "text"
}

// Dialect renders a TableDef for one database.
type Dialect struct {
	Name string

	// Quote quotes a single identifier segment.
	Quote func(string) string

	// Types maps each logical type to the SQL type name.
	Types map[Type]string

	// Guard wraps a CREATE TABLE statement so it is a no-op when the table
	// exists. fqn is already quoted. Nil means "CREATE TABLE IF NOT EXISTS".
	Guard func(fqn, rawFQN, create string) string
}
