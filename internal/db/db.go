package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql schema_postgres.sql
var schemaFS embed.FS

// sqliteUnicode is the sqlite3 driver with lower() replaced by a Unicode-aware
// version, so searches fold "È" and "è" the same way Postgres does.
const sqliteUnicode = "sqlite3_unicode"

func init() {
	sql.Register(sqliteUnicode, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

func Connect(driverName, dsn string) (*sql.DB, error) {
	openName := driverName
	if driverName == "sqlite3" {
		openName = sqliteUnicode
	}
	db, err := sql.Open(openName, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if driverName == "sqlite3" {
		// one writer at a time; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	return db, nil
}

// Migrate creates the tables the store needs if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driverName string) error {
	name := "schema_sqlite.sql"
	if driverName == "postgres" {
		name = "schema_postgres.sql"
	}
	schemaSQL, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
