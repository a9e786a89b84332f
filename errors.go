package surrealengine

import "errors"

// Sentinel errors returned by query execution and connection management.
var (
	// ErrNoDocuments is returned when a query expecting at least one
	// document matched none.
	ErrNoDocuments = errors.New("no documents matched")

	// ErrMultipleDocuments is returned by One when more than one document
	// matched.
	ErrMultipleDocuments = errors.New("multiple documents matched")

	// ErrNoWhereClause is returned by Update and Delete when no filter has
	// been applied and AllRows has not been chained.
	ErrNoWhereClause = errors.New("refusing table-wide write without AllRows")

	// ErrNoConnection is returned when an operation needs a connection that
	// is not available: an unregistered name, or an engine that never
	// connected.
	ErrNoConnection = errors.New("no connection available")

	// ErrPoolClosed is returned by Acquire after the pool has been closed.
	ErrPoolClosed = errors.New("connection pool is closed")

	// ErrPoolTimeout is returned by Acquire when the context expires before
	// a connection frees up.
	ErrPoolTimeout = errors.New("timed out waiting for a pooled connection")

	// ErrSubscriptionClosed is returned when operating on a killed live
	// subscription.
	ErrSubscriptionClosed = errors.New("live subscription is closed")

	// ErrQueryFailed is returned when a query result carries a non-OK
	// status.
	ErrQueryFailed = errors.New("query failed")
)
