package migrate

import (
	"fmt"
	"strings"

	"github.com/syssam/xarc"
)

// mysqlDialect renders mapping objects for MySQL/MariaDB.
//
// MySQL triggers cannot fire on both inserts and updates, so the check
// is rendered as a BEFORE INSERT / BEFORE UPDATE pair sharing the same
// body. Writes are aborted with SIGNAL SQLSTATE '45000'.
type mysqlDialect struct{}

func (mysqlDialect) supportsAddForeignKey() bool { return true }

func (mysqlDialect) quote(ident string) string {
	return "`" + ident + "`"
}

func (d mysqlDialect) addForeignKey(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.FKName(r.Column)
	return Statement{
		Kind: KindForeignKey,
		Name: name,
		SQL: fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.quote(m.Table()), d.quote(name), d.quote(r.Column), d.quote(r.RefTable), d.quote(r.RefColumn)),
	}
}

func (d mysqlDialect) dropForeignKey(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.FKName(r.Column)
	return Statement{
		Kind: KindForeignKey,
		Name: name,
		SQL:  fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", d.quote(m.Table()), d.quote(name)),
	}
}

func (d mysqlDialect) addIndex(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.IndexName(r.Column)
	return Statement{
		Kind: KindIndex,
		Name: name,
		SQL:  fmt.Sprintf("CREATE INDEX %s ON %s (%s)", d.quote(name), d.quote(m.Table()), d.quote(r.Column)),
	}
}

func (d mysqlDialect) dropIndex(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.IndexName(r.Column)
	return Statement{
		Kind: KindIndex,
		Name: name,
		SQL:  fmt.Sprintf("DROP INDEX %s ON %s", d.quote(name), d.quote(m.Table())),
	}
}

func (d mysqlDialect) addTriggers(spec triggerSpec) []Statement {
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

func (d mysqlDialect) dropTriggers(spec triggerSpec) []Statement {
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

func (d mysqlDialect) triggerBody(spec triggerSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tIF %s <> 1 THEN\n\t\tSIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = %s;\n\tEND IF;",
		spec.nonNullCount(d.quote), sqlQuoteString(spec.Message))
	if spec.Unique {
		for _, c := range spec.Columns {
			fmt.Fprintf(&b, "\n\tIF NEW.%s IS NOT NULL AND %s THEN\n\t\tSIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = %s;\n\tEND IF;",
				d.quote(c), spec.uniqueExists(c, d.quote), sqlQuoteString(spec.UniqueMessage))
		}
	}
	return b.String()
}
