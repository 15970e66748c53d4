// Package async orchestrates cancellable, re-triggerable fetches of a
// single resource and exposes the result as an immutable State snapshot.
//
// An Orchestrator owns one State, one serial loop and at most one live
// cancellation token. Three triggers feed the same fire path: vars
// changes (SetVars), a fixed interval (Config.RefetchOnInterval) and a
// reconnect signal (Options.Reconnect). Firing cancels the previous token
// before the new fetch starts, and a settlement is applied only if its
// token is still the current one, so out-of-order responses are dropped.
//
//	o := async.Mount(ctx, loadUser, UserVars{ID: 1}, nil)
//	defer o.Close()
//	s, _ := o.Await(ctx)
//	if s.HasError { ... }
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm/hxwrap/lib/store"
)

// Orchestrator coordinates the fetch lifecycle of one resource.
//
// All methods are safe for concurrent use. Subscribe listeners run on the
// orchestrator's loop goroutine and must not call Close or Await.
type Orchestrator[V, T any] struct {
	id    string
	fetch FetchFunc[V, T]
	opts  Options[V]
	log   *slog.Logger
	state *store.Store[State[T]]
	loop  *loop
	ctx   context.Context

	closeOnce sync.Once
	release   func() bool

	// Owned by the loop goroutine.
	vars       V
	current    *token
	seq        uint64
	closed     bool
	interval   time.Duration
	stopTicker func()
	detach     func()
	retryTimer *time.Timer
}

// Mount activates an orchestrator: it fires the initial fetch, arms the
// interval trigger and attaches the reconnect source.
//
// ctx is the owning scope. Fetch contexts derive from it, and cancelling
// it tears the orchestrator down as Close does. A nil opts means
// DefaultOptions.
func Mount[V, T any](ctx context.Context, fetch FetchFunc[V, T], vars V, opts *Options[V]) *Orchestrator[V, T] {
	o := &Orchestrator[V, T]{
		id:    uuid.NewString(),
		fetch: fetch,
		loop:  newLoop(),
		ctx:   ctx,
		vars:  vars,
		state: store.Of(State[T]{IsPending: true}),
	}
	if opts == nil {
		d := DefaultOptions[V]()
		opts = &d
	}
	o.opts = opts.normalize()
	o.log = o.opts.Logger.With("orchestrator", o.id)
	o.release = context.AfterFunc(ctx, o.Close)

	go o.loop.run()
	o.loop.post(func() {
		o.fire(false)
		o.arm(o.opts.RefetchOnInterval)
		o.attach()
	})
	return o
}

// ID identifies the orchestrator in log records.
func (o *Orchestrator[V, T]) ID() string {
	return o.id
}

// Snapshot returns the current state.
func (o *Orchestrator[V, T]) Snapshot() State[T] {
	return *o.state.Get()
}

// Subscribe calls fn after every state change until unsubscribed.
func (o *Orchestrator[V, T]) Subscribe(fn func()) (unsubscribe func()) {
	return o.state.Subscribe(fn)
}

// Config returns the normalized configuration in effect.
func (o *Orchestrator[V, T]) Config() Config {
	return o.opts.Config
}

// SetVars replaces the input vars.
//
// Before any data exists every update fires. Afterwards the update fires
// only if Options.RefetchOnVarsChange reports a change.
func (o *Orchestrator[V, T]) SetVars(vars V) {
	o.loop.post(func() {
		if o.closed {
			return
		}
		prev := o.vars
		o.vars = vars
		if o.state.Get().HasData && !o.opts.RefetchOnVarsChange(prev, vars) {
			o.log.Debug("vars unchanged, skipping refetch")
			return
		}
		o.fire(false)
	})
}

// SetInterval re-arms the interval trigger when d differs from the
// current period. Zero or negative disables it.
func (o *Orchestrator[V, T]) SetInterval(d time.Duration) {
	o.loop.post(func() {
		if o.closed {
			return
		}
		if d < 0 {
			d = 0
		}
		if d == o.interval {
			return
		}
		o.arm(d)
	})
}

// Refetch fires a new fetch with the current vars.
func (o *Orchestrator[V, T]) Refetch() {
	o.loop.post(func() { o.fire(false) })
}

// Await blocks until no fetch is pending and returns that snapshot.
//
// It returns ctx.Err() if ctx ends first, or ErrClosed if the orchestrator
// is torn down while a fetch is still pending.
func (o *Orchestrator[V, T]) Await(ctx context.Context) (State[T], error) {
	changed := make(chan struct{}, 1)
	unsubscribe := o.state.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		s := o.Snapshot()
		if !s.IsPending {
			return s, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return s, ctx.Err()
		case <-o.loop.done:
			return o.Snapshot(), ErrClosed
		}
	}
}

// Close tears the orchestrator down: the active token is cancelled, the
// interval timer and reconnect listener are detached, and any pending
// retry is dropped. It blocks until teardown completes and is idempotent.
func (o *Orchestrator[V, T]) Close() {
	o.closeOnce.Do(func() {
		o.loop.post(o.teardown)
	})
	<-o.loop.done
}

// Done is closed once teardown has completed.
func (o *Orchestrator[V, T]) Done() <-chan struct{} {
	return o.loop.done
}

func (o *Orchestrator[V, T]) teardown() {
	o.closed = true
	if o.current != nil {
		o.current.cancel()
		o.current = nil
	}
	o.arm(0)
	if o.detach != nil {
		o.detach()
		o.detach = nil
	}
	o.stopRetry()
	if o.release != nil {
		o.release()
	}
	o.log.Debug("orchestrator closed")
	o.loop.stop()
}

// fire cancels the active token, installs a new one, marks the state
// pending and starts the fetch. Must run on the loop.
func (o *Orchestrator[V, T]) fire(retry bool) {
	if o.closed {
		return
	}
	o.stopRetry()
	if o.current != nil {
		o.current.cancel()
	}

	o.seq++
	ctx, cancel := context.WithCancel(o.ctx)
	tok := &token{id: o.seq, ctx: ctx, cancel: cancel}
	o.current = tok

	o.state.Set(func(s *State[T]) {
		s.IsPending = true
		s.token = tok
		if retry {
			s.Retries++
		} else {
			s.Retries = 0
		}
	})
	o.log.Debug("fetch started", "fetch", tok.id, "retry", retry)

	vars := o.vars
	go func() {
		data, err := o.call(tok.ctx, vars)
		o.loop.post(func() { o.settle(tok, data, err) })
	}()
}

func (o *Orchestrator[V, T]) call(ctx context.Context, vars V) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return o.fetch(ctx, vars)
}

// settle applies the outcome of tok's fetch if tok is still current.
// Must run on the loop.
func (o *Orchestrator[V, T]) settle(tok *token, data T, err error) {
	if o.closed || tok != o.current {
		o.log.Debug("dropping stale settlement", "fetch", tok.id)
		return
	}
	// The fetch has returned; release its context.
	tok.cancel()

	if err != nil {
		o.state.Set(func(s *State[T]) {
			s.IsPending = false
			s.HasError = true
			s.Err = err
		})
		o.log.Debug("fetch failed", "fetch", tok.id, "error", err)
		o.scheduleRetry(tok)
		return
	}

	o.state.Set(func(s *State[T]) {
		s.IsPending = false
		s.HasData = true
		s.Data = data
		s.HasError = false
		s.Err = nil
	})
	o.log.Debug("fetch resolved", "fetch", tok.id)
}
