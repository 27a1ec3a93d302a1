package xarc

import (
	"context"
	"errors"
	"log/slog"
)

// AttributeReader exposes the current (possibly unsaved) attribute state
// of an entity instance. Implemented by the host model layer.
type AttributeReader interface {
	// CurrentValue returns the current value of the column, or nil when
	// the column is unset/null.
	CurrentValue(column string) any
}

// EntityStore loads referenced entities by primary-key value.
// Implementations must report a missing row with an error matching
// ErrNotFound.
type EntityStore interface {
	FetchByID(ctx context.Context, table string, id any) (any, error)
}

// Accessor binds a Mapping to one entity instance's attribute state and
// a host entity store. An entity type holds a Mapping and a bound
// Accessor rather than inheriting behavior; all operations are read-only
// projections over the current snapshot.
type Accessor struct {
	mapping *Mapping
	reader  AttributeReader
	store   EntityStore
	log     *slog.Logger
}

// BindOption configures an Accessor.
type BindOption func(*Accessor)

// WithLogger overrides the logger used for internal-consistency faults.
func WithLogger(l *slog.Logger) BindOption {
	return func(a *Accessor) { a.log = l }
}

// Bind returns an Accessor for the given mapping, attribute reader and
// entity store.
func Bind(m *Mapping, r AttributeReader, s EntityStore, opts ...BindOption) *Accessor {
	a := &Accessor{mapping: m, reader: r, store: s, log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Mapping returns the bound mapping.
func (a *Accessor) Mapping() *Mapping { return a.mapping }

// ActiveAssociation resolves the active key and fetches the referenced
// entity. It returns (nil, nil) when the snapshot is unset or in
// conflict: a row with both or neither relation set reports no
// resolvable association rather than raising. A fetch miss for a value
// that passed the foreign-key constraint is logged and surfaced as a
// DanglingReferenceError.
func (a *Accessor) ActiveAssociation(ctx context.Context) (any, error) {
	ak := a.mapping.ResolveReader(a.reader)
	if ak.State != StateResolved {
		return nil, nil
	}
	rel, _ := a.mapping.RelationOf(ak.Column)
	id := a.reader.CurrentValue(ak.Column)
	entity, err := a.store.FetchByID(ctx, rel.RefTable, id)
	switch {
	case err == nil:
		return entity, nil
	case errors.Is(err, ErrNotFound):
		derr := &DanglingReferenceError{RefTable: rel.RefTable, Column: ak.Column, Value: id, Err: err}
		a.log.ErrorContext(ctx, "xarc: dangling reference",
			"table", a.mapping.Table(),
			"role", a.mapping.Role(),
			"column", ak.Column,
			"ref_table", rel.RefTable,
			"value", id,
		)
		return nil, derr
	default:
		return nil, err
	}
}

// ActiveKey returns the resolved column name, or "" when the snapshot is
// unset or in conflict.
func (a *Accessor) ActiveKey() string {
	ak := a.mapping.ResolveReader(a.reader)
	if ak.State != StateResolved {
		return ""
	}
	return ak.Column
}

// ActiveQueryCondition returns a single-entry {column: value} map when
// the snapshot resolves, and an empty map otherwise. Intended for
// building a lookup filter, for example finding other rows pointing at
// the same target.
func (a *Accessor) ActiveQueryCondition() map[string]any {
	ak := a.mapping.ResolveReader(a.reader)
	if ak.State != StateResolved {
		return map[string]any{}
	}
	return map[string]any{ak.Column: a.reader.CurrentValue(ak.Column)}
}

// DeclaredKeys returns the declared foreign-key columns in declaration
// order, independent of current row state.
func (a *Accessor) DeclaredKeys() []string {
	return a.mapping.Keys()
}

// DeclaredRelationNames returns the human-facing relation names in
// declaration order with the polymorphic role name appended.
func (a *Accessor) DeclaredRelationNames() []string {
	return append(a.mapping.RelationNames(), a.mapping.Role())
}

// Validate checks the exclusivity invariant against the current
// attribute snapshot. See Mapping.ValidateExclusive.
func (a *Accessor) Validate() error {
	return a.mapping.validateKey(a.mapping.ResolveReader(a.reader))
}
