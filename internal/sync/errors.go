package sync

import "errors"

// Registry and cipher failures the UI layer translates into user copy.
// All are matchable with errors.Is.
var (
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrEmptyCode      = errors.New("sync code is empty")
	ErrCodeNotFound   = errors.New("invalid sync code")
	ErrCodeExpired    = errors.New("sync code has expired")
	ErrEmailMismatch  = errors.New("email does not match sync code")
	ErrDecryptFailed  = errors.New("invalid code or corrupted data")
	ErrCorruptPayload = errors.New("corrupted sync payload")
)
