// Package dbconn is the single MySQL connection a tool owns: bounded queries
// returning rows of nullable text, and classification of server errors.
package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DefaultQueryTimeout bounds every query issued through a DB
const DefaultQueryTimeout = 5 * time.Second

// Row is one result row, NULL columns are invalid NullStrings
type Row []sql.NullString

// Str returns column i, "" for NULL or a missing column
func (r Row) Str(i int) string {
	return r.Or(i, "")
}

// Or returns column i, or def for NULL or a missing column
func (r Row) Or(i int, def string) string {
	if i < 0 || i >= len(r) || !r[i].Valid {
		return def
	}
	return r[i].String
}

// IsNull is true for NULL and missing columns
func (r Row) IsNull(i int) bool {
	return i < 0 || i >= len(r) || !r[i].Valid
}

// Querier runs plain text SQL. Implemented by DB, and by fakes in tests.
type Querier interface {
	Query(ctx context.Context, query string) ([]Row, error)
	Exec(ctx context.Context, query string) error
}

// QueryError carries the SQL that failed
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// DB is a Querier over a database/sql pool limited to one connection
type DB struct {
	db      *sql.DB
	timeout time.Duration
}

// Open connects with config and verifies the connection within timeout
func Open(ctx context.Context, config *mysql.Config, timeout time.Duration) (*DB, error) {
	config.Timeout = timeout

	connector, err := mysql.NewConnector(config)
	if err != nil {
		return nil, fmt.Errorf("invalid connection config: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", config.Addr, err)
	}

	return New(db, DefaultQueryTimeout), nil
}

// New wraps an existing pool
func New(db *sql.DB, timeout time.Duration) *DB {
	return &DB{db: db, timeout: timeout}
}

// Query runs query and reads every row as nullable text
func (d *DB) Query(ctx context.Context, query string) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cur, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer cur.Close()

	cols, err := cur.Columns()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	var rows []Row
	valuesP := make([]interface{}, len(cols))
	for cur.Next() {
		row := make(Row, len(cols))
		for i := range row {
			valuesP[i] = &row[i]
		}
		if err := cur.Scan(valuesP...); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		rows = append(rows, row)
	}
	if err := cur.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	return rows, nil
}

// Exec runs a statement that returns no rows
func (d *DB) Exec(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return &QueryError{Query: query, Err: err}
	}
	return nil
}

// Ping checks the connection is still alive
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// Close releases the connection
func (d *DB) Close() error {
	return d.db.Close()
}

// Conn is one connection held out of the pool. A failure on it is returned
// as is, database/sql never swaps in a new connection behind it.
type Conn struct {
	conn    *sql.Conn
	timeout time.Duration
}

// Conn takes the pool's connection for exclusive use until Conn.Close
func (d *DB) Conn(ctx context.Context) (*Conn, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn, timeout: d.timeout}, nil
}

// Ping checks this connection is still alive
func (c *Conn) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.conn.PingContext(ctx)
}

// Close returns the connection to the pool
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Value returns the first column of the first row. ok is false for an empty
// result or a NULL value.
func Value(ctx context.Context, q Querier, query string) (val string, ok bool, err error) {
	return column(ctx, q, query, 0)
}

// VariableValue returns the second column of the first row, the value of a
// SHOW VARIABLES / SHOW STATUS result.
func VariableValue(ctx context.Context, q Querier, query string) (val string, ok bool, err error) {
	return column(ctx, q, query, 1)
}

func column(ctx context.Context, q Querier, query string, i int) (string, bool, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 || rows[0].IsNull(i) {
		return "", false, nil
	}
	return rows[0].Str(i), true, nil
}

// NameValues reads a two column name/value result (SHOW GLOBAL STATUS) into a map
func NameValues(ctx context.Context, q Querier, query string) (map[string]string, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Str(0)] = row.Str(1)
	}
	return values, nil
}
