package xarc

import "database/sql/driver"

// State classifies the exclusivity state of an attribute snapshot.
type State int

const (
	// StateUnset means no declared relation column is set.
	StateUnset State = iota
	// StateResolved means exactly one declared relation column is set.
	StateResolved
	// StateConflict means two or more declared relation columns are set.
	StateConflict
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateResolved:
		return "resolved"
	case StateConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// ActiveKey is the result of resolving an attribute snapshot against a
// Mapping. It is derived, never stored: any assignment to a relation
// column invalidates it, so callers resolve fresh on every query.
type ActiveKey struct {
	State   State
	Column  string   // The active column when State is StateResolved
	Columns []string // The non-null columns when State is StateConflict
}

// Resolve computes the active key for the given column-value snapshot.
// It is a pure, total function: missing keys and nil values count as
// null, as do invalid database/sql Null* wrappers, and every input maps
// to a defined output. Declaration order is scan order only; it never
// breaks ties, a tie is always a conflict.
func (m *Mapping) Resolve(values map[string]any) ActiveKey {
	var set []string
	for _, r := range m.relations {
		if v, ok := values[r.Column]; ok && !isNull(v) {
			set = append(set, r.Column)
		}
	}
	switch len(set) {
	case 0:
		return ActiveKey{State: StateUnset}
	case 1:
		return ActiveKey{State: StateResolved, Column: set[0]}
	default:
		return ActiveKey{State: StateConflict, Columns: set}
	}
}

// ResolveReader resolves the active key from a live attribute reader.
func (m *Mapping) ResolveReader(r AttributeReader) ActiveKey {
	values := make(map[string]any, len(m.relations))
	for _, rel := range m.relations {
		values[rel.Column] = r.CurrentValue(rel.Column)
	}
	return m.Resolve(values)
}

// isNull reports whether the value represents SQL NULL. Wrappers that
// implement driver.Valuer (sql.NullInt64 and friends) are unwrapped.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	if vr, ok := v.(driver.Valuer); ok {
		val, err := vr.Value()
		return err == nil && val == nil
	}
	return false
}
