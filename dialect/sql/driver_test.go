package sql

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/xarc/dialect"
)

// TestOpenDB tests the OpenDB function with different dialects.
func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
	}{
		{"Postgres", dialect.Postgres},
		{"MySQL", dialect.MySQL},
		{"SQLite", dialect.SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
		})
	}
}

// TestDialectMethod tests that wrapped driver names resolve to their
// base dialect.
func TestDialectMethod(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"sqlite", dialect.SQLite},
		{"sqlite3-ocelot", dialect.SQLite},
		{"mysql-tracing", dialect.MySQL},
		{"postgres-otel", dialect.Postgres},
		{"oracle", "oracle"},
	}
	for _, tt := range tests {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()
		drv := OpenDB(tt.name, db)
		assert.Equal(t, tt.want, drv.Dialect(), "driver name %s", tt.name)
		require.NoError(t, drv.Close())
	}
}

// TestDriverExec tests exec operations.
func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectExec("INSERT INTO users DEFAULT VALUES").WillReturnResult(sqlmock.NewResult(0, 1))
	err = drv.Exec(context.Background(), "INSERT INTO users DEFAULT VALUES", []any{}, nil)
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 3))
	var res Result
	err = drv.Exec(context.Background(), "DELETE FROM users", []any{}, &res)
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	// Invalid args and result types are rejected before touching the
	// database.
	err = drv.Exec(context.Background(), "DELETE FROM users", "not-a-slice", nil)
	require.Error(t, err)
	err = drv.Exec(context.Background(), "DELETE FROM users", []any{}, "not-a-result")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

// TestDriverQuery tests query operations.
func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectQuery("SELECT id, name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "mira").AddRow(2, "noa"))

	rows := &Rows{}
	err = drv.Query(context.Background(), "SELECT id, name FROM users", []any{}, rows)
	require.NoError(t, err)

	var got []string
	for rows.Next() {
		var (
			id   int
			name string
		)
		require.NoError(t, rows.Scan(&id, &name))
		got = append(got, name)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"mira", "noa"}, got)

	err = drv.Query(context.Background(), "SELECT 1", []any{}, "not-rows")
	require.Error(t, err)
	err = drv.Query(context.Background(), "SELECT 1", "not-a-slice", rows)
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

// TestDriverTransaction tests transactional exec and query.
func TestDriverTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users DEFAULT VALUES").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "INSERT INTO users DEFAULT VALUES", []any{}, nil))
	rows := &Rows{}
	require.NoError(t, tx.Query(context.Background(), "SELECT COUNT(*) FROM users", []any{}, rows))
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	require.NoError(t, rows.Close())
	assert.Equal(t, 1, n)
	require.NoError(t, tx.Commit())

	mock.ExpectBegin()
	mock.ExpectRollback()
	tx, err = drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	require.NoError(t, mock.ExpectationsWereMet())
}

// TestDebugDriver tests that the debug wrapper logs every operation and
// delegates to the underlying driver.
func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := dialect.Debug(OpenDB(dialect.Postgres, db), logger)
	assert.Equal(t, dialect.Postgres, drv.Dialect())

	mock.ExpectExec("UPDATE users SET name").WillReturnResult(sqlmock.NewResult(0, 1))
	err = drv.Exec(context.Background(), "UPDATE users SET name = $1", []any{"mira"}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "driver.Exec")
	assert.Contains(t, buf.String(), "UPDATE users SET name = $1")

	mock.ExpectQuery("SELECT name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("mira"))
	rows := &Rows{}
	err = drv.Query(context.Background(), "SELECT name FROM users", []any{}, rows)
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	assert.Contains(t, buf.String(), "driver.Query")

	require.NoError(t, mock.ExpectationsWereMet())
}

// TestDebugTx tests the debug wrapper around transactions.
func TestDebugTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := dialect.Debug(OpenDB(dialect.Postgres, db), logger)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "DELETE FROM users", []any{}, nil))
	require.NoError(t, tx.Commit())
	assert.Contains(t, buf.String(), "tx.Exec")
	assert.Contains(t, buf.String(), "tx.Commit")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	tx, err = drv.Tx(context.Background())
	require.NoError(t, err)
	rows := &Rows{}
	require.NoError(t, tx.Query(context.Background(), "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, tx.Rollback())
	assert.Contains(t, buf.String(), "tx.Query")
	assert.Contains(t, buf.String(), "tx.Rollback")

	require.NoError(t, mock.ExpectationsWereMet())
}
