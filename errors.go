package groundbase

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// Data errors
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrCorruptValue        = errors.New("stored structured value failed to deserialize")
	ErrInvalidData         = errors.New("invalid data")

	// Backend errors
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrMissingTable       = errors.New("storage table does not exist")

	// Sequence errors
	ErrSequenceContention = errors.New("sequence allocation retries exhausted")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorWithContext adds additional context to errors for better debugging
type ErrorWithContext struct {
	Err     error
	Context map[string]interface{}
}

func (e *ErrorWithContext) Error() string {
	if len(e.Context) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (context: %+v)", e.Err, e.Context)
}

func (e *ErrorWithContext) Unwrap() error {
	return e.Err
}

// WithContext adds context to an error
func WithContext(err error, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ErrorWithContext{
		Err:     err,
		Context: context,
	}
}

// Common error checking helpers

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintViolation checks if an error is a uniqueness/referential failure
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsCorruptValue checks if an error came from a malformed stored value
func IsCorruptValue(err error) bool {
	return errors.Is(err, ErrCorruptValue)
}

// IsSequenceContention checks if sequence allocation ran out of retries.
// The whole allocation can safely be retried by the caller.
func IsSequenceContention(err error) bool {
	return errors.Is(err, ErrSequenceContention)
}

// IsMissingTable checks if the expected table/collection is absent, which is a
// provisioning problem rather than a connectivity one.
func IsMissingTable(err error) bool {
	return errors.Is(err, ErrMissingTable)
}

// IsRetryable checks if an error is safe to retry at the caller's level
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, ErrSequenceContention)
}

// IsPermanent checks if an error is permanent (not retryable)
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrCorruptValue) ||
		errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingTable)
}
