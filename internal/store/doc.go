// Package store provides persistence for the SQLite collection database that
// Anki package files carry.
//
// The package follows the repository pattern used across the codebase: a
// store wraps a DBTX, which is satisfied by both *sql.DB and *sql.Tx, so the
// same store methods run inside or outside a transaction. RunInTransaction
// commits when its callback returns nil and rolls back otherwise.
//
// The schema is version 11 of the Anki collection format (tables col, notes,
// cards, revlog and graves), written with the pure Go modernc.org/sqlite
// driver so that no cgo toolchain is required.
package store
