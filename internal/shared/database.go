package shared

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Database wraps a [sql.DB] together with the driver it was opened with.
// Queries throughout the stores are written with `?` placeholders; Rebind
// rewrites them to `$n` when the connection is Postgres.
type Database struct {
	*sql.DB
	driver string
}

// NewDatabase opens a connection to the database identified by dsn. A
// postgres:// or postgresql:// DSN is opened with the pgx stdlib driver, any
// other value is treated as a SQLite path (":memory:" for an in-memory
// database). The connection is pinged before being returned.
func NewDatabase(dsn string) (*Database, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	driver := "sqlite3"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, driver: driver}, nil
}

// Configure sets connection pool settings for the database.
// Recommended for production use to limit connections and improve performance.
func (d *Database) Configure(maxOpenConns, maxIdleConns int) {
	d.SetMaxOpenConns(maxOpenConns)
	d.SetMaxIdleConns(maxIdleConns)
}

// Driver returns the name of the sql driver backing this connection.
func (d *Database) Driver() string {
	return d.driver
}

// Rebind rewrites `?` placeholders to `$1..$n` for Postgres connections.
// SQLite queries pass through unchanged.
func (d *Database) Rebind(query string) string {
	if d.driver != "pgx" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// HealthCheck verifies the connection is alive with a trivial query.
func (d *Database) HealthCheck() error {
	var one int
	if err := d.QueryRow("SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: health check failed: %v", ErrStoreUnavailable, err)
	}
	return nil
}
