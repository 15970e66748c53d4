package store

import "sync"

// SetFunc applies a patch to the store.
type SetFunc[S any] func(Patch[S])

// GetFunc returns the current snapshot.
type GetFunc[S any] func() *S

// Store is a flux-style container for a single immutable state value.
//
// Every Set computes a new snapshot through Reduce, swaps the pointer and
// then notifies all subscribers synchronously, outside the lock. Listener
// order is undefined; a notification means "state is now Get()", not an
// ordered delta.
//
//	counter := store.New(func(set store.SetFunc[Counter], get store.GetFunc[Counter]) Counter {
//	    return Counter{Inc: func() { set(func(c *Counter) { c.N++ }) }}
//	})
type Store[S any] struct {
	mu        sync.Mutex
	state     *S
	initial   *S
	listeners map[uint64]func()
	nextID    uint64
}

// New creates a store whose initial state is produced once by init.
//
// init receives the store's set and get functions so the state may carry
// its own actions. Anything set from inside init is overwritten: the
// returned value becomes both the current and the initial snapshot.
func New[S any](init func(set SetFunc[S], get GetFunc[S]) S) *Store[S] {
	s := &Store[S]{listeners: make(map[uint64]func())}
	var initial S
	if init != nil {
		initial = init(s.Set, s.Get)
	}
	s.mu.Lock()
	s.state = &initial
	s.initial = s.state
	s.mu.Unlock()
	return s
}

// Of creates a store holding v with no bound actions.
func Of[S any](v S) *Store[S] {
	return New(func(SetFunc[S], GetFunc[S]) S { return v })
}

// Get returns the current snapshot. Callers must not modify it.
func (s *Store[S]) Get() *S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initial returns the snapshot produced by the init function.
//
// It stays referentially stable for the store's lifetime, for consumers
// that need a value before the first update.
func (s *Store[S]) Initial() *S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initial
}

// Set overlays patch onto the current state. A nil patch does nothing and
// notifies no one.
func (s *Store[S]) Set(patch Patch[S]) {
	s.Update(func(*S) Patch[S] { return patch })
}

// Update resolves a patch from the current state and applies it.
//
// produce runs under the store lock and must not call back into the store.
func (s *Store[S]) Update(produce func(*S) Patch[S]) {
	s.mu.Lock()
	next := ReduceFunc(s.state, produce)
	if next == s.state {
		s.mu.Unlock()
		return
	}
	s.state = next
	listeners := make([]func(), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}

// Subscribe registers fn to run after every state change and returns a
// function that removes it. Unsubscribing twice is harmless.
func (s *Store[S]) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Select applies selector to the current snapshot.
func Select[S, T any](s *Store[S], selector func(*S) T) T {
	return selector(s.Get())
}
