// pkg/nyx_err/types.go

package nyx_err

import "errors"

// ErrChecksumMismatch is the sentinel wrapped by checksum verification failures.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// UserError marks an error as expected and recoverable by the user.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}
