// Package testdb provides an in-memory SQLite database carrying the same
// tables as the PostgreSQL schema, for package tests.
package testdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/stretchr/testify/require"
)

//go:embed schema.sql
var schemaSQL string

var seq atomic.Int64

// Open returns a fresh database that is closed when the test ends. A single
// connection is used so a transaction and the reads it depends on share state.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:garage_test_%d?mode=memory&cache=shared&_loc=UTC", seq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(schemaSQL)
	require.NoError(t, err, "applying test schema")
	return db
}
