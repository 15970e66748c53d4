package hxwrap

import (
	"context"
	"sync"

	"github.com/a-h/templ"

	"github.com/pthm/hxwrap/lib/async"
	"github.com/pthm/hxwrap/lib/props"
)

// AsyncOptions configures WithAsync: the orchestrator options plus the
// placeholder and error views.
type AsyncOptions[V any] struct {
	async.Options[V]
	Views
}

// DefaultAsyncOptions returns AsyncOptions with async.DefaultOptions and
// the default views.
func DefaultAsyncOptions[V any]() AsyncOptions[V] {
	return AsyncOptions[V]{Options: async.DefaultOptions[V]()}
}

// MakeWithAsync returns default options with views bound, for sharing
// one placeholder and error view across many WithAsync calls:
//
//	opts := hxwrap.MakeWithAsync[UserVars](appViews)
//	card := hxwrap.WithAsync(cardView, loadCard, opts)
func MakeWithAsync[V any](views Views) *AsyncOptions[V] {
	o := DefaultAsyncOptions[V]()
	o.Views = views
	return &o
}

// Phase is what an async view shows for a given State.
type Phase int

const (
	// PhasePending renders the placeholder.
	PhasePending Phase = iota
	// PhaseError renders the error view.
	PhaseError
	// PhaseReady renders the wrapped view with merged props.
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseError:
		return "error"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// PhaseOf decides what to render for s.
//
// A settled error wins. Without data the placeholder shows. With data
// and a fetch in flight, the placeholder shows only when
// showLoadingOnRefetch is set; otherwise the stale data stays on screen.
func PhaseOf[T any](s async.State[T], showLoadingOnRefetch bool) Phase {
	switch {
	case !s.IsPending && s.HasError:
		return PhaseError
	case !s.HasData:
		return PhasePending
	case s.IsPending && showLoadingOnRefetch:
		return PhasePending
	default:
		return PhaseReady
	}
}

// Async binds a fetch function to a view whose props are built from the
// input vars and the fetched data.
type Async[V, T, P any] struct {
	view  View[P]
	fetch async.FetchFunc[V, T]
	opts  AsyncOptions[V]
	merge func(vars V, data T) (P, error)
}

// WithAsync wraps view with an asynchronous data dependency.
//
// Props for view are vars overlaid with data by field name, data winning.
// Use Merge when the types do not line up by name. A nil opts means
// DefaultAsyncOptions.
func WithAsync[V, T, P any](view View[P], fetch async.FetchFunc[V, T], opts *AsyncOptions[V]) *Async[V, T, P] {
	o := DefaultAsyncOptions[V]()
	if opts != nil {
		o = *opts
	}
	return &Async[V, T, P]{
		view:  view,
		fetch: fetch,
		opts:  o,
		merge: spread[V, T, P],
	}
}

func spread[V, T, P any](vars V, data T) (P, error) {
	var zero P
	return props.Spread(zero, vars, data)
}

// Merge replaces the vars/data overlay with fn.
func (a *Async[V, T, P]) Merge(fn func(vars V, data T) P) *Async[V, T, P] {
	a.merge = func(vars V, data T) (P, error) { return fn(vars, data), nil }
	return a
}

// WithViews replaces the placeholder and error views. Nil fields fall
// back to the defaults.
func (a *Async[V, T, P]) WithViews(v Views) *Async[V, T, P] {
	a.opts.Views = v
	return a
}

// Mount starts a live instance for vars. The instance is torn down when
// ctx ends or Close is called.
func (a *Async[V, T, P]) Mount(ctx context.Context, vars V) *Mounted[V, T, P] {
	opts := a.opts.Options
	return &Mounted[V, T, P]{
		owner: a,
		orch:  async.Mount(ctx, a.fetch, vars, &opts),
		vars:  vars,
	}
}

// View returns a one-shot view: each render mounts an instance, waits
// for the first settlement under the render context, renders the result
// and tears the instance down. If the render context ends first the
// placeholder renders.
func (a *Async[V, T, P]) View() View[V] {
	return func(vars V) templ.Component {
		return deferred(func(ctx context.Context) templ.Component {
			m := a.Mount(ctx, vars)
			defer m.Close()
			s, _ := m.orch.Await(ctx)
			if ctx.Err() != nil {
				return a.opts.placeholder()
			}
			return a.render(s, vars)
		})
	}
}

func (a *Async[V, T, P]) render(s async.State[T], vars V) templ.Component {
	switch PhaseOf(s, a.opts.ShowLoadingOnRefetch) {
	case PhaseError:
		return a.opts.catch(CatchProps{Retries: s.Retries, Err: s.Err})
	case PhasePending:
		return a.opts.placeholder()
	}
	p, err := a.merge(vars, s.Data)
	if err != nil {
		return failed(mergeError(err))
	}
	return a.view(p)
}

// Mounted is a live async view instance.
type Mounted[V, T, P any] struct {
	owner *Async[V, T, P]
	orch  *async.Orchestrator[V, T]

	mu   sync.Mutex
	vars V
}

// Component renders the instance's current state. The state is read at
// Render time, so one component can be rendered repeatedly.
func (m *Mounted[V, T, P]) Component() templ.Component {
	return deferred(func(context.Context) templ.Component {
		m.mu.Lock()
		vars := m.vars
		m.mu.Unlock()
		return m.owner.render(m.orch.Snapshot(), vars)
	})
}

// SetProps replaces the input vars. Whether a refetch follows is up to
// the RefetchOnVarsChange comparator.
func (m *Mounted[V, T, P]) SetProps(vars V) {
	m.mu.Lock()
	m.vars = vars
	m.mu.Unlock()
	m.orch.SetVars(vars)
}

// Props returns the current input vars.
func (m *Mounted[V, T, P]) Props() V {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vars
}

// State returns the current snapshot.
func (m *Mounted[V, T, P]) State() async.State[T] {
	return m.orch.Snapshot()
}

// Phase returns what Component would render right now.
func (m *Mounted[V, T, P]) Phase() Phase {
	return PhaseOf(m.orch.Snapshot(), m.owner.opts.ShowLoadingOnRefetch)
}

// Refetch fires a fetch with the current vars.
func (m *Mounted[V, T, P]) Refetch() {
	m.orch.Refetch()
}

// Subscribe registers fn to run after every state change.
func (m *Mounted[V, T, P]) Subscribe(fn func()) (unsubscribe func()) {
	return m.orch.Subscribe(fn)
}

// Await blocks until no fetch is pending.
func (m *Mounted[V, T, P]) Await(ctx context.Context) error {
	_, err := m.orch.Await(ctx)
	return wrapAsyncError(err)
}

// ID returns the orchestrator's identifier.
func (m *Mounted[V, T, P]) ID() string {
	return m.orch.ID()
}

// Close tears the instance down. It is idempotent.
func (m *Mounted[V, T, P]) Close() {
	m.orch.Close()
}
