// Package sqlite provides a SQLite-backed implementation of driven.SessionStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. The database is opened in shared-cache memory mode, so session data never
// touches disk and is lost when the store is closed.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Thread Safety
//
// All operations are thread-safe. The pool holds a single connection, so
// statements are serialised by database/sql. Each chunk append runs in one
// transaction and is never partially visible.
package sqlite
