// Package sqlite keeps pending questions in a SQLite file, by default
// data/questions.db, using the pure Go modernc.org/sqlite driver.
//
// The schema lives in the migrations package and is applied on open. The
// database runs in WAL mode with a busy timeout, so the query service and
// the questions command can share the file.
package sqlite
