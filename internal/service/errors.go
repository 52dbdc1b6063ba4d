package service

import "fmt"

// ValidationError rejects malformed caller input before any storage access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a transaction or connection failure during a posting.
// Postings are not idempotent, so these are surfaced and never retried here;
// retry policy belongs to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
