package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/syssam/xarc"
	"github.com/syssam/xarc/dialect"
)

// Migrate applies compiled constraint sets through a dialect.Driver.
// All statements for one call run inside a single transaction owned by
// the migrator; the core never executes SQL outside of it.
type Migrate struct {
	drv             dialect.Driver
	log             *slog.Logger
	withForeignKeys bool
	dryRun          io.Writer
}

// MigrateOption configures a Migrate.
type MigrateOption func(*Migrate)

// WithForeignKeys controls whether the per-relation foreign-key
// constraints are compiled. Defaults to true; must be disabled on
// SQLite.
func WithForeignKeys(b bool) MigrateOption {
	return func(m *Migrate) { m.withForeignKeys = b }
}

// WithLogger overrides the logger used for progress reporting.
func WithLogger(l *slog.Logger) MigrateOption {
	return func(m *Migrate) { m.log = l }
}

// WithDryRun writes the compiled statements to w instead of executing
// them.
func WithDryRun(w io.Writer) MigrateOption {
	return func(m *Migrate) { m.dryRun = w }
}

// NewMigrate returns a migrator bound to the given driver.
func NewMigrate(drv dialect.Driver, opts ...MigrateOption) (*Migrate, error) {
	if drv == nil {
		return nil, errors.New("migrate: nil driver")
	}
	m := &Migrate{drv: drv, log: slog.Default(), withForeignKeys: true}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create compiles and applies the add statements for the given mappings.
// Compilation of all mappings happens before anything is executed, so a
// compile failure leaves the schema untouched.
func (m *Migrate) Create(ctx context.Context, mappings ...*xarc.Mapping) error {
	stmts, err := m.compile(CompileAdd, mappings)
	if err != nil {
		return err
	}
	return m.apply(ctx, stmts)
}

// Drop compiles and applies the remove statements for the given
// mappings.
func (m *Migrate) Drop(ctx context.Context, mappings ...*xarc.Mapping) error {
	stmts, err := m.compile(CompileRemove, mappings)
	if err != nil {
		return err
	}
	return m.apply(ctx, stmts)
}

func (m *Migrate) compile(f func(string, *xarc.Mapping, ...CompileOption) ([]Statement, error), mappings []*xarc.Mapping) ([]Statement, error) {
	var opts []CompileOption
	if !m.withForeignKeys {
		opts = append(opts, WithoutForeignKeys())
	}
	var stmts []Statement
	for _, mp := range mappings {
		s, err := f(m.drv.Dialect(), mp, opts...)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s...)
	}
	return stmts, nil
}

func (m *Migrate) apply(ctx context.Context, stmts []Statement) error {
	if m.dryRun != nil {
		for _, s := range stmts {
			if _, err := fmt.Fprintf(m.dryRun, "%s;\n", s.SQL); err != nil {
				return err
			}
		}
		return nil
	}
	tx, err := m.drv.Tx(ctx)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		m.log.DebugContext(ctx, "migrate: exec", "kind", string(s.Kind), "name", s.Name)
		if err := tx.Exec(ctx, s.SQL, []any{}, nil); err != nil {
			return errors.Join(fmt.Errorf("migrate: %s %q: %w", s.Kind, s.Name, err), tx.Rollback())
		}
	}
	return tx.Commit()
}
