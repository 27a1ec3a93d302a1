package migrate

import (
	"fmt"
	"strings"

	"github.com/syssam/xarc"
)

// triggerSpec is the dialect-neutral intermediate for the exclusivity
// check: count the non-null declared columns on the candidate row image
// and abort the write when the count is not exactly 1. It is
// parameterized only by the owner table and the relation column list;
// it has no dependency on referenced-table structure.
type triggerSpec struct {
	Table         string
	PK            string
	Name          string
	Columns       []string
	Unique        bool
	Message       string
	UniqueMessage string
}

func newTriggerSpec(m *xarc.Mapping) triggerSpec {
	keys := m.Keys()
	return triggerSpec{
		Table:         m.Table(),
		PK:            m.PrimaryKey(),
		Name:          m.TriggerName(),
		Columns:       keys,
		Unique:        m.Unique(),
		Message:       fmt.Sprintf("%s: exactly one of %s must be non-null", m.Table(), strings.Join(keys, ", ")),
		UniqueMessage: fmt.Sprintf("%s: active %s value already referenced by another row", m.Table(), m.Role()),
	}
}

// nonNullCount renders the count-of-non-null expression over the
// candidate row image (NEW.<column>), quoting identifiers with quote.
// The check runs on the final row image so it applies identically to
// inserts and updates.
func (s triggerSpec) nonNullCount(quote func(string) string) string {
	terms := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		terms[i] = fmt.Sprintf("CASE WHEN NEW.%s IS NULL THEN 0 ELSE 1 END", quote(c))
	}
	return "(" + strings.Join(terms, " + ") + ")"
}

// uniqueExists renders the duplicate-active-value probe for one column:
// another row of the owner table holds the same value in the same
// column. The candidate row excludes itself by primary key; on insert
// NEW.pk may still be null, which the IS NULL arm covers.
func (s triggerSpec) uniqueExists(column string, quote func(string) string) string {
	c, t, pk := quote(column), quote(s.Table), quote(s.PK)
	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s = NEW.%s AND (NEW.%s IS NULL OR %s <> NEW.%s))", t, c, c, pk, pk, pk)
}

// sqlQuoteString escapes a string for embedding as a SQL string literal.
func sqlQuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
