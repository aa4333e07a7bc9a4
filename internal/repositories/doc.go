// Package repositories implements SQLite persistence for run history.
//
// RunRepository records the outcome of every reconciliation run with an
// atomic per-table sequence counter for human-readable run numbering.
// The [NextSequence] function increments the counter inside a
// transaction so concurrent writers never share a number.
package repositories
