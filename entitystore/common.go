package entitystore

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmptyTableNameSupplied      = errors.New("empty table name supplied")
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrConcurrencyConflict         = errors.New("concurrency conflict, the transaction could not be serialized")
	ErrNotFound                    = errors.New("entity not found")
	ErrInvalidTransactionState     = errors.New("invalid transaction state")
	ErrConstraintViolation         = errors.New("constraint violation")
	ErrValidation                  = errors.New("validation failed")
	ErrUnknownEntityType           = errors.New("unknown entity type")
	ErrRelationNotSupported        = errors.New("entity type does not support relation includes")
	ErrQueryingEntitiesFailed      = errors.New("querying entities failed")
	ErrFlushingChangesFailed       = errors.New("flushing changes failed")
	ErrBeginTransactionFailed      = errors.New("begin transaction failed")
	ErrCommitTransactionFailed     = errors.New("commit transaction failed")
	ErrRollbackTransactionFailed   = errors.New("rollback transaction failed")
	ErrScanningRowFailed           = errors.New("scanning db row failed")
	ErrMarshalingPayloadFailed     = errors.New("marshaling entity payload failed")
	ErrUnmarshalingPayloadFailed   = errors.New("unmarshaling entity payload failed")
	ErrSessionFinished             = errors.New("session already committed or rolled back")
	ErrEntityTypeAlreadyRegistered = errors.New("entity type already registered")
)

// NotFoundError is returned when an update or delete targets an identity that does not exist in the store.
// It is raised when the pending changes are flushed, never while staging.
type NotFoundError struct {
	EntityType string
	ID         uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.EntityType, e.ID)
}

// Is enables errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entityType string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{EntityType: entityType, ID: id}
}

// InvalidTransactionStateError is returned when a transaction lifecycle operation is not allowed in the current state.
type InvalidTransactionStateError struct {
	Operation string
	State     TxState
}

func (e *InvalidTransactionStateError) Error() string {
	return fmt.Sprintf("cannot %s transaction in state %s", e.Operation, e.State)
}

// Is enables errors.Is(err, ErrInvalidTransactionState).
func (e *InvalidTransactionStateError) Is(target error) bool {
	return target == ErrInvalidTransactionState
}

// NewInvalidTransactionStateError creates a new InvalidTransactionStateError.
func NewInvalidTransactionStateError(operation string, state TxState) *InvalidTransactionStateError {
	return &InvalidTransactionStateError{Operation: operation, State: state}
}

// ConstraintViolationError is returned when a flush violates a uniqueness constraint (or the identity's primary key).
type ConstraintViolationError struct {
	EntityType string
	Constraint string
	Value      string
	Cause      error
}

func (e *ConstraintViolationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s violates constraint %s", e.EntityType, e.Constraint)
	}

	return fmt.Sprintf("%s violates constraint %s with value '%s'", e.EntityType, e.Constraint, e.Value)
}

// Unwrap returns the underlying driver error, if any.
func (e *ConstraintViolationError) Unwrap() error {
	return e.Cause
}

// Is enables errors.Is(err, ErrConstraintViolation).
func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// NewConstraintViolationError creates a new ConstraintViolationError.
func NewConstraintViolationError(entityType, constraint, value string, cause error) *ConstraintViolationError {
	return &ConstraintViolationError{EntityType: entityType, Constraint: constraint, Value: value, Cause: cause}
}

// ValidationError is returned when caller-supplied input fails a precondition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is enables errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidTransactionState checks if an error is (or wraps) an InvalidTransactionStateError.
func IsInvalidTransactionState(err error) bool {
	return errors.Is(err, ErrInvalidTransactionState)
}

// IsConstraintViolation checks if an error is (or wraps) a ConstraintViolationError.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsValidation checks if an error is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConcurrencyConflict checks if an error is (or wraps) ErrConcurrencyConflict.
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// AsConstraintViolation extracts the ConstraintViolationError from an error chain.
func AsConstraintViolation(err error) (*ConstraintViolationError, bool) {
	var cv *ConstraintViolationError
	if errors.As(err, &cv) {
		return cv, true
	}

	return nil, false
}
