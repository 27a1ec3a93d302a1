// Package xarc implements exclusive-arc polymorphic relations for SQL
// schemas: a single logical association from one table to exactly one of
// several possible target tables, carried as one nullable foreign-key
// column per target instead of a type+id discriminator pair.
//
// A relation is declared once as a Mapping and consumed in two places.
// At migration time the migrate package compiles the Mapping into the
// database objects (foreign keys, indexes and an exclusivity trigger)
// that make the "exactly one column is non-null" invariant authoritative
// at the storage layer. At application runtime the Mapping resolves the
// active key from current attribute values and backs the Accessor and
// validation helpers exposed to host code.
//
// # Declaring a Mapping
//
//	m, err := xarc.Define("time_entries", "chargeable").
//	    Relation("employee_id", "employees", "id").
//	    Relation("product_id", "products", "id").
//	    Build()
//
// # Resolving at runtime
//
//	ak := m.Resolve(map[string]any{"employee_id": 1, "product_id": nil})
//	// ak.State == xarc.StateResolved, ak.Column == "employee_id"
//
// Resolution is a pure function over the given snapshot. A row with no
// relation column set resolves to StateUnset; a row with two or more set
// resolves to StateConflict. Neither state is an error at read time; only
// a write attempt turns them into one, enforced by the generated trigger.
//
// # Sub-packages
//
//   - dialect: driver abstraction over database/sql
//   - migrate: DDL compilation and execution for the supported dialects
package xarc
