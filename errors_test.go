package hxwrap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pthm/hxwrap/lib/async"
	"github.com/pthm/hxwrap/lib/props"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	errs := []error{
		ErrClosed,
		ErrMergeFailed,
		ErrInvalidFormat,
		ErrSignatureInvalid,
		ErrDecryptFailed,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestIsDecodeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrInvalidFormat", ErrInvalidFormat, true},
		{"ErrSignatureInvalid", ErrSignatureInvalid, true},
		{"wrapped ErrDecryptFailed", fmt.Errorf("wrapped: %w", ErrDecryptFailed), true},
		{"ErrClosed", ErrClosed, false},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsDecodeError(tt.err)
			if result != tt.expect {
				t.Errorf("IsDecodeError(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrClosed", ErrClosed, true},
		{"wrapped ErrClosed", fmt.Errorf("wrapped: %w", ErrClosed), true},
		{"async.ErrClosed mapped", wrapAsyncError(async.ErrClosed), true},
		{"ErrMergeFailed", ErrMergeFailed, false},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsClosed(tt.err)
			if result != tt.expect {
				t.Errorf("IsClosed(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestIsMergeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrMergeFailed", ErrMergeFailed, true},
		{"merge error", mergeError(props.ErrUnsupported), true},
		{"ErrClosed", ErrClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsMergeError(tt.err)
			if result != tt.expect {
				t.Errorf("IsMergeError(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestMergeErrorKeepsCause(t *testing.T) {
	err := mergeError(props.ErrUnsupported)
	if !errors.Is(err, props.ErrUnsupported) {
		t.Errorf("mergeError should wrap its cause, got %v", err)
	}
}

func TestWrapAsyncError(t *testing.T) {
	if wrapAsyncError(nil) != nil {
		t.Error("wrapAsyncError(nil) should be nil")
	}
	other := errors.New("boom")
	if got := wrapAsyncError(other); got != other {
		t.Errorf("wrapAsyncError(other) = %v, want %v", got, other)
	}
}
