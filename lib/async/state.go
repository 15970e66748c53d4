package async

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned by Await once the orchestrator has been torn down.
var ErrClosed = errors.New("async: orchestrator closed")

// FetchFunc loads T for vars. It must honor ctx: a cancelled ctx means the
// result will be discarded.
type FetchFunc[V, T any] func(ctx context.Context, vars V) (T, error)

// State is the observable snapshot of one orchestrator.
//
// Data and Err are not mutually exclusive: a failed refetch keeps the last
// resolved data alongside the new error.
type State[T any] struct {
	// Retries counts retry attempts of the current logical fetch.
	Retries int

	// IsPending is true while a fetch is in flight.
	IsPending bool

	HasData bool
	Data    T

	HasError bool
	Err      error

	token *token
}

// Settled reports whether no fetch is in flight.
func (s State[T]) Settled() bool {
	return !s.IsPending
}

// token owns the cancellation of one in-flight fetch.
type token struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// PanicError wraps a panic recovered from a fetch function.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: panic in fetch: %v", e.Value)
}
