package gallerydb

import (
	"errors"
	"fmt"

	"github.com/vcostin/gallerydb/query"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("gallerydb: record not found")

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("gallerydb: cannot start a transaction within a transaction")

	// ErrTxTimeout is returned when an interactive transaction exceeds its
	// configured timeout or cannot acquire a connection within maxWait.
	ErrTxTimeout = errors.New("gallerydb: transaction timed out")
)

// ValidationError reports a request that was rejected before reaching the
// database: an unknown field, a conflicting option set, or a malformed value.
type ValidationError = query.ValidationError

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// NotFoundError is returned by the OrThrow lookup variants and by update,
// upsert and delete when the target record does not exist.
type NotFoundError struct {
	entity string
	filter any // Optional: the unique filter that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.filter != nil {
		return fmt.Sprintf("gallerydb: %s not found (filter=%v)", e.entity, e.filter)
	}
	return fmt.Sprintf("gallerydb: %s not found", e.entity)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Entity returns the entity name.
func (e *NotFoundError) Entity() string {
	return e.entity
}

// Filter returns the filter that was searched for, if available.
func (e *NotFoundError) Filter() any {
	return e.filter
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(entity string) *NotFoundError {
	return &NotFoundError{entity: entity}
}

// NewNotFoundErrorWithFilter returns a new NotFoundError carrying the unique
// filter that matched nothing.
func NewNotFoundErrorWithFilter(entity string, filter any) *NotFoundError {
	return &NotFoundError{entity: entity, filter: filter}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// UniqueConstraintError is returned when a write violates a unique constraint.
type UniqueConstraintError struct {
	entity     string
	constraint string // Database constraint name, when the driver reports one
	wrap       error
}

// Error returns the error string.
func (e *UniqueConstraintError) Error() string {
	if e.constraint != "" {
		return fmt.Sprintf("gallerydb: unique constraint failed on %s (%s)", e.entity, e.constraint)
	}
	return fmt.Sprintf("gallerydb: unique constraint failed on %s", e.entity)
}

// Unwrap returns the underlying driver error.
func (e *UniqueConstraintError) Unwrap() error {
	return e.wrap
}

// Entity returns the entity name.
func (e *UniqueConstraintError) Entity() string {
	return e.entity
}

// Constraint returns the violated constraint name, or "" if unknown.
func (e *UniqueConstraintError) Constraint() string {
	return e.constraint
}

// NewUniqueConstraintError returns a new UniqueConstraintError.
func NewUniqueConstraintError(entity, constraint string, wrap error) *UniqueConstraintError {
	return &UniqueConstraintError{entity: entity, constraint: constraint, wrap: wrap}
}

// IsUniqueConstraintError returns true if the error is a UniqueConstraintError.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e *UniqueConstraintError
	return errors.As(err, &e)
}

// ForeignKeyError is returned when a write violates a foreign key constraint,
// either by referencing a missing record or by deleting a referenced one.
type ForeignKeyError struct {
	entity     string
	constraint string
	wrap       error
}

// Error returns the error string.
func (e *ForeignKeyError) Error() string {
	if e.constraint != "" {
		return fmt.Sprintf("gallerydb: foreign key constraint failed on %s (%s)", e.entity, e.constraint)
	}
	return fmt.Sprintf("gallerydb: foreign key constraint failed on %s", e.entity)
}

// Unwrap returns the underlying driver error.
func (e *ForeignKeyError) Unwrap() error {
	return e.wrap
}

// Entity returns the entity name.
func (e *ForeignKeyError) Entity() string {
	return e.entity
}

// Constraint returns the violated constraint name, or "" if unknown.
func (e *ForeignKeyError) Constraint() string {
	return e.constraint
}

// NewForeignKeyError returns a new ForeignKeyError.
func NewForeignKeyError(entity, constraint string, wrap error) *ForeignKeyError {
	return &ForeignKeyError{entity: entity, constraint: constraint, wrap: wrap}
}

// IsForeignKeyError returns true if the error is a ForeignKeyError.
func IsForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	var e *ForeignKeyError
	return errors.As(err, &e)
}

// IsConstraintError returns true if the error is a unique or foreign key
// constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) || IsForeignKeyError(err)
}

// TxTimeoutError is returned when an interactive transaction exceeds its
// timeout, or when acquiring its connection exceeds maxWait. The transaction
// is rolled back before the error is returned.
type TxTimeoutError struct {
	Phase string // "maxWait" or "timeout"
	Err   error
}

// Error returns the error string.
func (e *TxTimeoutError) Error() string {
	return fmt.Sprintf("gallerydb: transaction %s exceeded: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *TxTimeoutError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches TxTimeoutError.
func (e *TxTimeoutError) Is(err error) bool {
	return err == ErrTxTimeout
}

// IsTxTimeout returns true if the error is a TxTimeoutError.
func IsTxTimeout(err error) bool {
	if err == nil {
		return false
	}
	var e *TxTimeoutError
	return errors.As(err, &e) || errors.Is(err, ErrTxTimeout)
}

// ConnectionError is returned when the underlying database cannot be reached
// or the connection is lost mid-operation.
type ConnectionError struct {
	Err error
}

// Error returns the error string.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("gallerydb: connection error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError returns true if the error is a ConnectionError.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConnectionError
	return errors.As(err, &e)
}

// NotLoadedError is returned when accessing a relation that was not requested
// with include on the original query.
type NotLoadedError struct {
	relation string
}

// Error returns the error string.
func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("gallerydb: relation %q was not loaded", e.relation)
}

// NewNotLoadedError returns a new NotLoadedError for the given relation name.
func NewNotLoadedError(relation string) *NotLoadedError {
	return &NotLoadedError{relation: relation}
}

// IsNotLoaded returns true if the error is a NotLoadedError.
func IsNotLoaded(err error) bool {
	if err == nil {
		return false
	}
	var e *NotLoadedError
	return errors.As(err, &e)
}

// RollbackError wraps a rollback failure together with the error that
// triggered the rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("gallerydb: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}
