// Package dialect provides the database dialect abstraction consumed by
// the migrate package. It defines the driver interfaces the schema
// executor is expected to implement; the dialect/sql sub-package adapts
// database/sql to them.
package dialect

import (
	"context"
	"log/slog"
)

// Supported dialects.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the Exec and Query operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example,
	// in SQL, INSERT or UPDATE. It scans the result into v when v is a
	// non-nil pointer.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT.
	// It scans the result into v.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all database operations.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps transaction behavior on top of ExecQuerier.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// DebugDriver is a driver that logs all driver operations.
type DebugDriver struct {
	Driver              // underlying driver.
	log    *slog.Logger // log used for printing.
}

// Debug gets a driver and returns a new debug driver that logs every
// operation through slog.
func Debug(d Driver, logger ...*slog.Logger) Driver {
	l := slog.Default()
	if len(logger) > 0 {
		l = logger[0]
	}
	return &DebugDriver{d, l}
}

// Exec logs its params and calls the underlying driver Exec method.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "driver.Exec", "query", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Query logs its params and calls the underlying driver Query method.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "driver.Query", "query", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Tx adds a log-id for the transaction and calls the underlying driver
// Tx command.
func (d *DebugDriver) Tx(ctx context.Context) (Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	d.log.DebugContext(ctx, "driver.Tx started")
	return &DebugTx{tx, d.log, ctx}, nil
}

// DebugTx is a transaction implementation that logs all transaction
// operations.
type DebugTx struct {
	Tx
	log *slog.Logger
	ctx context.Context
}

// Exec logs its params and calls the underlying transaction Exec method.
func (d *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "tx.Exec", "query", query, "args", args)
	return d.Tx.Exec(ctx, query, args, v)
}

// Query logs its params and calls the underlying transaction Query method.
func (d *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "tx.Query", "query", query, "args", args)
	return d.Tx.Query(ctx, query, args, v)
}

// Commit logs the commit and calls the underlying transaction Commit.
func (d *DebugTx) Commit() error {
	d.log.DebugContext(d.ctx, "tx.Commit")
	return d.Tx.Commit()
}

// Rollback logs the rollback and calls the underlying transaction
// Rollback.
func (d *DebugTx) Rollback() error {
	d.log.DebugContext(d.ctx, "tx.Rollback")
	return d.Tx.Rollback()
}
