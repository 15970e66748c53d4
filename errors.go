package hxwrap

import (
	"errors"
	"fmt"

	"github.com/pthm/hxwrap/lib/async"
)

// Sentinel errors for wrapper operations.
var (
	ErrClosed           = errors.New("hxwrap: async view closed")
	ErrMergeFailed      = errors.New("hxwrap: prop merge failed")
	ErrInvalidFormat    = errors.New("hxwrap: invalid vars format")
	ErrSignatureInvalid = errors.New("hxwrap: vars signature invalid")
	ErrDecryptFailed    = errors.New("hxwrap: vars decryption failed")
)

// IsClosed checks if err reports a torn-down async view.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsMergeError checks if err is a prop merge failure.
func IsMergeError(err error) bool {
	return errors.Is(err, ErrMergeFailed)
}

// IsDecodeError checks if err is any vars token decoding failure.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrDecryptFailed)
}

// wrapAsyncError maps lib/async errors onto hxwrap sentinels.
func wrapAsyncError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, async.ErrClosed) {
		return ErrClosed
	}
	return err
}

func mergeError(err error) error {
	return fmt.Errorf("%w: %w", ErrMergeFailed, err)
}
