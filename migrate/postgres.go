package migrate

import (
	"fmt"
	"strings"

	"github.com/syssam/xarc"
)

// postgresDialect renders mapping objects for PostgreSQL.
//
// The check is a single BEFORE INSERT OR UPDATE trigger backed by a
// plpgsql function named after the trigger. The function evaluates the
// final row image, so concurrent writers are serialized by the engine's
// normal row-level locking inside their own transactions.
type postgresDialect struct{}

func (postgresDialect) supportsAddForeignKey() bool { return true }

func (postgresDialect) quote(ident string) string {
	return `"` + ident + `"`
}

func (d postgresDialect) addForeignKey(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.FKName(r.Column)
	return Statement{
		Kind: KindForeignKey,
		Name: name,
		SQL: fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.quote(m.Table()), d.quote(name), d.quote(r.Column), d.quote(r.RefTable), d.quote(r.RefColumn)),
	}
}

func (d postgresDialect) dropForeignKey(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.FKName(r.Column)
	return Statement{
		Kind: KindForeignKey,
		Name: name,
		SQL:  fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", d.quote(m.Table()), d.quote(name)),
	}
}

func (d postgresDialect) addIndex(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.IndexName(r.Column)
	return Statement{
		Kind: KindIndex,
		Name: name,
		SQL:  fmt.Sprintf("CREATE INDEX %s ON %s (%s)", d.quote(name), d.quote(m.Table()), d.quote(r.Column)),
	}
}

func (d postgresDialect) dropIndex(m *xarc.Mapping, r xarc.Relation) Statement {
	name := m.IndexName(r.Column)
	return Statement{
		Kind: KindIndex,
		Name: name,
		SQL:  fmt.Sprintf("DROP INDEX %s", d.quote(name)),
	}
}

func (d postgresDialect) addTriggers(spec triggerSpec) []Statement {
	fn := spec.Name + "_fn"
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE FUNCTION %s() RETURNS trigger LANGUAGE plpgsql AS $$\nBEGIN\n", d.quote(fn))
	fmt.Fprintf(&b, "\tIF %s <> 1 THEN\n\t\tRAISE EXCEPTION %s;\n\tEND IF;\n",
		spec.nonNullCount(d.quote), raiseLiteral(spec.Message))
	if spec.Unique {
		for _, c := range spec.Columns {
			fmt.Fprintf(&b, "\tIF NEW.%s IS NOT NULL AND %s THEN\n\t\tRAISE EXCEPTION %s;\n\tEND IF;\n",
				d.quote(c), spec.uniqueExists(c, d.quote), raiseLiteral(spec.UniqueMessage))
		}
	}
	b.WriteString("\tRETURN NEW;\nEND;\n$$")
	return []Statement{
		{Kind: KindFunction, Name: fn, SQL: b.String()},
		{
			Kind: KindTrigger,
			Name: spec.Name,
			SQL: fmt.Sprintf("CREATE TRIGGER %s BEFORE INSERT OR UPDATE ON %s FOR EACH ROW EXECUTE FUNCTION %s()",
				d.quote(spec.Name), d.quote(spec.Table), d.quote(fn)),
		},
	}
}

func (d postgresDialect) dropTriggers(spec triggerSpec) []Statement {
	fn := spec.Name + "_fn"
	return []Statement{
		{
			Kind: KindTrigger,
			Name: spec.Name,
			SQL:  fmt.Sprintf("DROP TRIGGER %s ON %s", d.quote(spec.Name), d.quote(spec.Table)),
		},
		{Kind: KindFunction, Name: fn, SQL: fmt.Sprintf("DROP FUNCTION %s", d.quote(fn))},
	}
}

// raiseLiteral escapes a message for use in RAISE EXCEPTION, where % is
// a format directive.
func raiseLiteral(msg string) string {
	return sqlQuoteString(strings.ReplaceAll(msg, "%", "%%"))
}
