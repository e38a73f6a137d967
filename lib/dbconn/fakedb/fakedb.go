// Package fakedb is an in-memory dbconn.Querier for tests: canned rows or
// errors per query text, and a record of every statement issued.
package fakedb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/jayjanssen/myq-mon/lib/dbconn"
)

// Result is the canned response for one query
type Result struct {
	Rows []dbconn.Row
	Err  error
}

// DB answers queries from its results map. Unknown queries fail with a
// table access denied error so a test notices queries it did not expect.
type DB struct {
	mu      sync.Mutex
	results map[string]Result
	queries []string
	execs   []string
	execErr error
}

// New returns an empty fake
func New() *DB {
	return &DB{results: make(map[string]Result)}
}

// Str builds a non-NULL column
func Str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// Null is a NULL column
var Null = sql.NullString{}

// Denied is the error a restricted account gets
func Denied() error {
	return &mysql.MySQLError{Number: 1142, Message: "SELECT command denied to user"}
}

// Set answers query with rows
func (db *DB) Set(query string, rows ...dbconn.Row) *DB {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.results[query] = Result{Rows: rows}
	return db
}

// SetValue answers query with a single one column row
func (db *DB) SetValue(query, val string) *DB {
	return db.Set(query, dbconn.Row{Str(val)})
}

// SetErr makes query fail with err
func (db *DB) SetErr(query string, err error) *DB {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.results[query] = Result{Err: err}
	return db
}

// SetExecErr makes every Exec fail with err
func (db *DB) SetExecErr(err error) *DB {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.execErr = err
	return db
}

func (db *DB) Query(ctx context.Context, query string) ([]dbconn.Row, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.queries = append(db.queries, query)

	res, ok := db.results[query]
	if !ok {
		return nil, &dbconn.QueryError{Query: query, Err: fmt.Errorf("unexpected query: %w", Denied())}
	}
	if res.Err != nil {
		return nil, &dbconn.QueryError{Query: query, Err: res.Err}
	}
	return res.Rows, nil
}

func (db *DB) Exec(ctx context.Context, query string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.execs = append(db.execs, query)
	if db.execErr != nil {
		return &dbconn.QueryError{Query: query, Err: db.execErr}
	}
	return nil
}

// Queries is every query issued so far
func (db *DB) Queries() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]string(nil), db.queries...)
}

// Execs is every statement passed to Exec so far
func (db *DB) Execs() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]string(nil), db.execs...)
}

// Count is how many times a query containing substr was issued
func (db *DB) Count(substr string) int {
	n := 0
	for _, q := range db.Queries() {
		if strings.Contains(q, substr) {
			n++
		}
	}
	return n
}

// Reset forgets the recorded queries, the canned results stay
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.queries = nil
	db.execs = nil
}
