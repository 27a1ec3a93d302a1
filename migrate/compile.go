// Package migrate compiles exclusive-arc mappings into the database
// objects that enforce them, and applies the result through a
// dialect.Driver or a versioned migration directory.
package migrate

import (
	"fmt"

	"github.com/syssam/xarc"
	"github.com/syssam/xarc/dialect"
)

// StatementKind classifies a compiled DDL statement by the object it
// creates or drops.
type StatementKind string

// Statement kinds.
const (
	KindForeignKey StatementKind = "foreign_key"
	KindIndex      StatementKind = "index"
	KindTrigger    StatementKind = "trigger"
	KindFunction   StatementKind = "function"
)

// Statement is one compiled DDL statement. Name is the deterministic
// object name derived from the mapping, so add and remove target the
// same objects without any record of what was applied.
type Statement struct {
	Kind StatementKind
	Name string
	SQL  string
}

// ConstraintSet is the compiled output for one mapping: the add
// statements and their exact structural inverse. Executing Add then
// Remove against a fresh schema returns it to its pre-add state.
type ConstraintSet struct {
	Add    []Statement
	Remove []Statement
}

// CompileOption configures compilation.
type CompileOption func(*compileConfig)

type compileConfig struct {
	skipForeignKeys bool
}

// WithoutForeignKeys omits the per-relation foreign-key constraints.
// Required on SQLite, where constraints cannot be added to an existing
// table and are expected to be declared at table creation.
func WithoutForeignKeys() CompileOption {
	return func(c *compileConfig) {
		c.skipForeignKeys = true
	}
}

// sqlDialect renders mapping objects for one target database.
type sqlDialect interface {
	// supportsAddForeignKey reports whether the dialect can add a
	// foreign-key constraint to an existing table.
	supportsAddForeignKey() bool
	addForeignKey(m *xarc.Mapping, r xarc.Relation) Statement
	dropForeignKey(m *xarc.Mapping, r xarc.Relation) Statement
	addIndex(m *xarc.Mapping, r xarc.Relation) Statement
	dropIndex(m *xarc.Mapping, r xarc.Relation) Statement
	addTriggers(spec triggerSpec) []Statement
	dropTriggers(spec triggerSpec) []Statement
}

func dialectFor(name string) (sqlDialect, error) {
	switch name {
	case dialect.SQLite:
		return sqliteDialect{}, nil
	case dialect.MySQL:
		return mysqlDialect{}, nil
	case dialect.Postgres:
		return postgresDialect{}, nil
	default:
		return nil, &xarc.UnsupportedMappingError{
			Dialect: name,
			Message: fmt.Sprintf("unknown dialect %q", name),
		}
	}
}

func configFor(d string, m *xarc.Mapping, opts []CompileOption) (sqlDialect, *compileConfig, error) {
	b, err := dialectFor(d)
	if err != nil {
		return nil, nil, err
	}
	cfg := &compileConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.skipForeignKeys && !b.supportsAddForeignKey() {
		return nil, nil, &xarc.UnsupportedMappingError{
			Dialect: d,
			Table:   m.Table(),
			Message: "cannot add a foreign-key constraint to an existing table; declare the constraints at table creation and compile with WithoutForeignKeys",
		}
	}
	return b, cfg, nil
}

// CompileAdd compiles the mapping into the ordered DDL statements that
// install it: per relation, in declaration order, a foreign key followed
// by an index, and after all relations a single exclusivity trigger set
// covering the whole arc. No partial list is ever returned on error.
func CompileAdd(d string, m *xarc.Mapping, opts ...CompileOption) ([]Statement, error) {
	b, cfg, err := configFor(d, m, opts)
	if err != nil {
		return nil, err
	}
	var stmts []Statement
	for _, r := range m.Relations() {
		if !cfg.skipForeignKeys {
			stmts = append(stmts, b.addForeignKey(m, r))
		}
		stmts = append(stmts, b.addIndex(m, r))
	}
	stmts = append(stmts, b.addTriggers(newTriggerSpec(m))...)
	return stmts, nil
}

// CompileRemove compiles the exact inverse of CompileAdd from the
// mapping alone, using the same deterministic naming rules. Objects are
// dropped in reverse dependency order: trigger set, then foreign keys,
// then indexes, each group in reverse declaration order.
func CompileRemove(d string, m *xarc.Mapping, opts ...CompileOption) ([]Statement, error) {
	b, cfg, err := configFor(d, m, opts)
	if err != nil {
		return nil, err
	}
	var stmts []Statement
	stmts = append(stmts, b.dropTriggers(newTriggerSpec(m))...)
	relations := m.Relations()
	if !cfg.skipForeignKeys {
		for i := len(relations) - 1; i >= 0; i-- {
			stmts = append(stmts, b.dropForeignKey(m, relations[i]))
		}
	}
	for i := len(relations) - 1; i >= 0; i-- {
		stmts = append(stmts, b.dropIndex(m, relations[i]))
	}
	return stmts, nil
}

// Compile compiles both directions for the mapping.
func Compile(d string, m *xarc.Mapping, opts ...CompileOption) (*ConstraintSet, error) {
	add, err := CompileAdd(d, m, opts...)
	if err != nil {
		return nil, err
	}
	remove, err := CompileRemove(d, m, opts...)
	if err != nil {
		return nil, err
	}
	return &ConstraintSet{Add: add, Remove: remove}, nil
}
