package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrSchemaMissing means the database is reachable but an expected
	// table or column does not exist yet. Callers surface it differently
	// from a connectivity failure: the fix is running the migrations, not
	// retrying.
	ErrSchemaMissing = errors.New("database schema missing")
)
