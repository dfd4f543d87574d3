package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both unknown handle and wrong password,
	// so a caller cannot probe which handles exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account is banned")

	ErrMalformedCredential = errors.New("malformed session credential")
	ErrBadSignature        = errors.New("session credential signature mismatch")

	ErrCodeRequired = errors.New("device code required")
	ErrCodeMismatch = errors.New("device code does not match bound device")
)

// CodeTakenError reports that a machine code is bound to another handle. The
// owning handle is exposed on purpose so a human can resolve the conflict.
type CodeTakenError struct {
	Owner string
}

func (e *CodeTakenError) Error() string {
	return fmt.Sprintf("device code already bound to %q", e.Owner)
}
