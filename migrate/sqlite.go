package migrate

import (
	"fmt"
	"strings"

	"github.com/syssam/xarc"
)

// sqliteDialect renders mapping objects for SQLite.
//
// SQLite cannot add a foreign-key constraint to an existing table, so
// foreign keys must be declared at table creation and compilation
// refuses unless WithoutForeignKeys is set. The exclusivity check is a
// BEFORE INSERT / BEFORE UPDATE trigger pair with the same body:
// trigger bodies run their statements in order, so the uniqueness probes
// only execute once the count check has passed.
type sqliteDialect struct{}

func (sqliteDialect) supportsAddForeignKey() bool { return false }

func (sqliteDialect) quote(ident string) string {
	return "`" + ident + "`"
}

// addForeignKey is unreachable on SQLite; compilation refuses before
// the per-relation loop runs. Panic instead of returning an empty
// statement that would be silently executed if that guard regressed.
func (d sqliteDialect) addForeignKey(m *xarc.Mapping, r xarc.Relation) Statement {
	panic("migrate: sqlite cannot add a foreign key to an existing table")
}

func (d sqliteDialect) dropForeignKey(m *xarc.Mapping, r xarc.Relation) Statement {
	panic("migrate: sqlite cannot drop a foreign key from an existing table")
}

func (d sqliteDialect) addIndex(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.IndexName(r.Column)
	return Statement{
		Kind: KindIndex,
		Name: name,
		SQL:  fmt.Sprintf("CREATE INDEX %s ON %s (%s)", d.quote(name), d.quote(m.Table()), d.quote(r.Column)),
	}
}

func (d sqliteDialect) dropIndex(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.IndexName(r.Column)
	return Statement{
		Kind: KindIndex,
		Name: name,
		SQL:  fmt.Sprintf("DROP INDEX %s", d.quote(name)),
	}
}

func (d sqliteDialect) addTriggers(spec triggerSpec) []Statement {
	body := d.triggerBody(spec)
	stmts := make([]Statement, 0, 2)
	for _, t := range []struct{ suffix, event string }{
		{"_ins", "INSERT"},
		{"_upd", "UPDATE"},
	} {
		name := spec.Name + t.suffix
		stmts = append(stmts, Statement{
			Kind: KindTrigger,
			Name: name,
			SQL: fmt.Sprintf("CREATE TRIGGER %s BEFORE %s ON %s FOR EACH ROW\nBEGIN\n%s\nEND",
				d.quote(name), t.event, d.quote(spec.Table), body),
		})
	}
	return stmts
}

func (d sqliteDialect) dropTriggers(spec triggerSpec) []Statement {
	stmts := make([]Statement, 0, 2)
	for _, suffix := range []string{"_upd", "_ins"} {
		name := spec.Name + suffix
		stmts = append(stmts, Statement{
			Kind: KindTrigger,
			Name: name,
			SQL:  fmt.Sprintf("DROP TRIGGER %s", d.quote(name)),
		})
	}
	return stmts
}

func (d sqliteDialect) triggerBody(spec triggerSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tSELECT RAISE(ABORT, %s) WHERE %s <> 1;",
		sqlQuoteString(spec.Message), spec.nonNullCount(d.quote))
	if spec.Unique {
		for _, c := range spec.Columns {
			fmt.Fprintf(&b, "\n\tSELECT RAISE(ABORT, %s) WHERE NEW.%s IS NOT NULL AND %s;",
				sqlQuoteString(spec.UniqueMessage), d.quote(c), spec.uniqueExists(c, d.quote))
		}
	}
	return b.String()
}
