package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Tables known to EnsureSchema.
const (
	UsersTable = "users"
	TasksTable = "tasks"
)

const sqliteBusyTimeout = "_pragma=busy_timeout(5000)"

//go:embed schema
var schemaFS embed.FS

// NewDB opens a connection pool for driver and verifies it with a ping.
// For sqlite the dsn is a file path (or ":memory:") and the parent directory
// is created when missing.
func NewDB(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?" + sqliteBusyTimeout
		}
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		// RowsAffected must count matched rows so an update to a row with
		// identical values is not reported as missing.
		cfg.ClientFoundRows = true
		dsn = cfg.FormatDSN()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// sqlite serializes writers anyway; one connection also keeps
		// an in-memory database alive for the life of the pool.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the given tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB, driver string, tables ...string) error {
	for _, table := range tables {
		ddl, err := schemaFS.ReadFile("schema/" + driver + "/" + table + ".sql")
		if err != nil {
			return fmt.Errorf("schema for %s/%s: %w", driver, table, err)
		}
		if _, err := db.ExecContext(ctx, string(ddl)); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}
	return nil
}

// Ping runs a trivial statement against the store.
func Ping(ctx context.Context, db *sqlx.DB) error {
	var one int
	return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func ensureDir(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

// isDuplicateEntryError reports whether err is a unique index violation.
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	return false
}
