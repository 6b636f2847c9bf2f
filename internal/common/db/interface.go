package db

import "context"

// Database defines the unified interface for relational storage.
// This abstraction allows switching between database implementations
// without changing business logic.
type Database interface {
	Querier

	// Transaction executes a function within a database transaction.
	// The transaction is committed if fn returns nil, rolled back otherwise.
	Transaction(ctx context.Context, fn func(tx Transaction) error) error

	// Ping verifies the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the database connection pool
	Close() error
}

// Transaction represents an in-flight database transaction.
type Transaction interface {
	Querier

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error
}

// Rows is the result of a query returning multiple rows.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Row is the result of a query returning at most one row.
type Row interface {
	Scan(dest ...interface{}) error
}

// Result summarizes an executed statement.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Scanner is the common surface of Row and Rows used by scan helpers.
type Scanner interface {
	Scan(dest ...interface{}) error
}
