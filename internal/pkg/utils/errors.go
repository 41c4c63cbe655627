package utils

import "errors"

// ErrNonRetryable marks a failure that will not be fixed by processing the message again,
// queue handlers stop retrying on it
type ErrNonRetryable struct {
	err error
}

// NewErrNonRetryable creates new error
func NewErrNonRetryable(err error) error {
	return &ErrNonRetryable{err: err}
}

func (e *ErrNonRetryable) Error() string {
	return "non retryable error: " + e.err.Error()
}

func (e *ErrNonRetryable) Unwrap() error {
	return e.err
}

// IsNonRetryable checks if any error in the chain is ErrNonRetryable
func IsNonRetryable(err error) bool {
	var target *ErrNonRetryable
	return errors.As(err, &target)
}
