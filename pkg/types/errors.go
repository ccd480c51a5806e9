package types

import "errors"

// Connection and statement failure classes. Every backend error surfaced by
// the database layer wraps exactly one of these.
var (
	ErrNotConnected = errors.New("connection is not open")
	ErrSyntax       = errors.New("statement rejected at prepare time")
	ErrRuntime      = errors.New("statement rejected at execution time")
	ErrTimeout      = errors.New("operation exceeded its time budget")
	ErrInvalidState = errors.New("invalid connection or transaction state")
	ErrUnavailable  = errors.New("endpoint is unavailable")
)

// Persistence-level errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrValidation    = errors.New("entity validation failed")
	ErrValueTooLarge = errors.New("value exceeds size cap")
	ErrEntityType    = errors.New("unknown entity type")
	ErrNotRunning    = errors.New("persistence manager is not running")
	ErrAlreadyOpen   = errors.New("persistence manager is already open")
	ErrCancelled     = errors.New("task was cancelled")
)

// Pool errors.
var (
	ErrPoolClosed    = errors.New("connection pool is closed")
	ErrPoolExhausted = errors.New("connection pool exhausted")
)

// Manager errors.
var (
	ErrNoEndpoint      = errors.New("no healthy endpoint for role")
	ErrUnknownEndpoint = errors.New("unknown endpoint name")
)
