package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed, missing or out-of-range input. The caller
// can always recover by resubmitting corrected data; nothing was mutated.
type ValidationError struct {
	Message string
	Action  string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s (fields: %v)", e.Message, e.Fields)
	}
	return e.Message
}

// NotFoundError reports a missing referenced entity (asset, currency,
// asset type, transaction type, position).
type NotFoundError struct {
	Message string
	Action  string
}

func (e *NotFoundError) Error() string { return e.Message }

// UnauthorizedError reports an ownership violation: the referenced entity
// exists but does not belong to the submitting user.
type UnauthorizedError struct {
	Message string
	Action  string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// ConflictError reports lock or transaction contention on a position key.
// It is safe to retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StorageError wraps an underlying persistence failure. The ledger guarantees
// the transaction log and the position aggregate were left consistent.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
