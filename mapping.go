package xarc

import (
	"fmt"

	"github.com/go-openapi/inflect"
)

// Relation describes one arm of an exclusive arc: a nullable foreign-key
// column on the owner table and the table/column it references.
type Relation struct {
	Column    string // Foreign-key column on the owner table
	RefTable  string // Referenced table
	RefColumn string // Referenced column (usually the primary key)
}

// Mapping is the immutable declaration of an exclusive-arc relation.
// It is constructed with Define and validated once in Build; afterwards
// it is a read-only value safe for concurrent use. The compiler and the
// runtime helpers never retain a Mapping across calls.
type Mapping struct {
	table     string
	role      string
	pk        string
	relations []Relation
	unique    bool
	fkPrefix  string
	idxPrefix string
}

// Builder assembles a Mapping. All methods return the builder for
// chaining; validation happens in Build.
type Builder struct {
	m Mapping
}

// Define starts a mapping declaration for the given owner table and
// polymorphic role name. The role is the human-facing name of the arc
// (for example "chargeable") and is the name validation failures are
// attached to.
func Define(table, role string) *Builder {
	return &Builder{m: Mapping{table: table, role: role, pk: "id"}}
}

// Relation adds one arm to the arc in declaration order.
func (b *Builder) Relation(column, refTable, refColumn string) *Builder {
	b.m.relations = append(b.m.relations, Relation{Column: column, RefTable: refTable, RefColumn: refColumn})
	return b
}

// PrimaryKey overrides the owner table's primary-key column.
// It defaults to "id".
func (b *Builder) PrimaryKey(column string) *Builder {
	b.m.pk = column
	return b
}

// UniqueAcrossRelations additionally enforces that the value of the
// active column is unique across all rows of the owner table.
func (b *Builder) UniqueAcrossRelations() *Builder {
	b.m.unique = true
	return b
}

// ForeignKeyPrefix overrides the default foreign-key constraint naming.
// When set, the constraint for each arm is named prefix+column.
func (b *Builder) ForeignKeyPrefix(prefix string) *Builder {
	b.m.fkPrefix = prefix
	return b
}

// IndexPrefix overrides the default index naming. When set, the index
// for each arm is named prefix+column.
func (b *Builder) IndexPrefix(prefix string) *Builder {
	b.m.idxPrefix = prefix
	return b
}

// Build validates the declaration and returns the immutable Mapping.
// Build is the only place validation occurs.
func (b *Builder) Build() (*Mapping, error) {
	m := b.m
	switch {
	case m.table == "":
		return nil, &InvalidMappingError{Message: "owner table must not be empty"}
	case m.role == "":
		return nil, &InvalidMappingError{Table: m.table, Message: "role name must not be empty"}
	case m.pk == "":
		return nil, &InvalidMappingError{Table: m.table, Message: "primary-key column must not be empty"}
	case len(m.relations) < 2:
		return nil, &InvalidMappingError{Table: m.table, Message: fmt.Sprintf("an exclusive arc requires at least 2 relations, got %d", len(m.relations))}
	}
	seen := make(map[string]struct{}, len(m.relations))
	for _, r := range m.relations {
		switch {
		case r.Column == "":
			return nil, &InvalidMappingError{Table: m.table, Message: "relation column must not be empty"}
		case r.RefTable == "" || r.RefColumn == "":
			return nil, &InvalidMappingError{Table: m.table, Column: r.Column, Message: "referenced table and column must not be empty"}
		case r.Column == m.pk:
			return nil, &InvalidMappingError{Table: m.table, Column: r.Column, Message: "relation column conflicts with the owner primary key"}
		}
		if _, ok := seen[r.Column]; ok {
			return nil, &InvalidMappingError{Table: m.table, Column: r.Column, Message: "duplicate relation column"}
		}
		seen[r.Column] = struct{}{}
	}
	// Copy the slice so later builder reuse cannot alias the mapping.
	m.relations = append([]Relation(nil), m.relations...)
	return &m, nil
}

// MustBuild calls Build and panics on error. Intended for package-level
// declarations where the mapping is statically known to be valid.
func (b *Builder) MustBuild() *Mapping {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// Table returns the owner table name.
func (m *Mapping) Table() string { return m.table }

// Role returns the polymorphic role name.
func (m *Mapping) Role() string { return m.role }

// PrimaryKey returns the owner table's primary-key column.
func (m *Mapping) PrimaryKey() string { return m.pk }

// Unique reports whether the active value must be unique across rows.
func (m *Mapping) Unique() bool { return m.unique }

// Relations returns the declared arms in declaration order.
func (m *Mapping) Relations() []Relation {
	return append([]Relation(nil), m.relations...)
}

// Keys returns the declared foreign-key column names in declaration
// order, independent of any row state.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.relations))
	for i, r := range m.relations {
		keys[i] = r.Column
	}
	return keys
}

// RelationNames returns the human-facing relation names in declaration
// order, derived by singularizing the referenced table names
// (for example "employees" becomes "employee").
func (m *Mapping) RelationNames() []string {
	names := make([]string, len(m.relations))
	for i, r := range m.relations {
		names[i] = inflect.Singularize(r.RefTable)
	}
	return names
}

// RelationOf returns the arm declared for the given column.
func (m *Mapping) RelationOf(column string) (Relation, bool) {
	for _, r := range m.relations {
		if r.Column == column {
			return r, true
		}
	}
	return Relation{}, false
}

// FKName returns the deterministic foreign-key constraint name for the
// given column. Add and remove compilation derive the same name from the
// mapping alone, so removal never needs a lookup of what was added.
func (m *Mapping) FKName(column string) string {
	if m.fkPrefix != "" {
		return m.fkPrefix + column
	}
	return fmt.Sprintf("%s_%s", m.table, column)
}

// IndexName returns the deterministic index name for the given column.
func (m *Mapping) IndexName(column string) string {
	if m.idxPrefix != "" {
		return m.idxPrefix + column
	}
	return fmt.Sprintf("%s_%s_idx", m.table, column)
}

// TriggerName returns the deterministic base name of the exclusivity
// trigger objects. Dialects that need several objects (insert/update
// trigger pairs, a backing function) derive their names from it.
func (m *Mapping) TriggerName() string {
	return fmt.Sprintf("%s_%s_check", m.table, m.role)
}
