package swap

import (
	"errors"
	"fmt"

	"github.com/vntlabs/vnt-swap-backend/internal/wallet"
)

// Failure taxonomy. Everything here is recoverable: validation errors are
// caught before any network call, read failures collapse to safe defaults,
// write failures leave state untouched so the user can retry, and a declined
// prompt is reported distinctly from a real failure.

// ErrUserDeclined marks a signer-rejected prompt. Aliased from the wallet
// package so callers only need errors.Is against one sentinel.
var ErrUserDeclined = wallet.ErrUserDeclined

// ValidationError reports a malformed or sub-minimum amount. It is raised
// before any ledger interaction.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ReadFailure wraps a failed quote/allowance/market read.
type ReadFailure struct {
	Op  string
	Err error
}

func (e *ReadFailure) Error() string {
	return fmt.Sprintf("%s read failed: %v", e.Op, e.Err)
}

func (e *ReadFailure) Unwrap() error { return e.Err }

// WriteFailure wraps an approve/sell transaction that failed to submit or
// reverted on inclusion.
type WriteFailure struct {
	Op  string
	Err error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// classifyWrite maps a transaction error into the taxonomy: a declined
// prompt passes through as ErrUserDeclined, anything else becomes a
// WriteFailure carrying the underlying message.
func classifyWrite(op string, err error) error {
	if errors.Is(err, wallet.ErrUserDeclined) {
		return err
	}
	return &WriteFailure{Op: op, Err: err}
}
