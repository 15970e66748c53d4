// Package store provides an immutable-state reducer and a small flux-style
// shared-state container built on it.
//
// State values are held by pointer and never mutated after publication. An
// update is expressed as a Patch that mutates a private shallow copy; the
// copy then replaces the current pointer. A nil Patch is the no-op case and
// returns the very same pointer, which lets callers skip notification.
package store

// Patch overlays a subset of fields onto a private copy of S.
//
// A Patch must only assign fields; it must not retain the pointer it is
// given. A nil Patch means "no change".
type Patch[S any] func(*S)

// Reduce applies patch to a shallow copy of state and returns the copy.
//
// If patch is nil the input pointer is returned unchanged. The value behind
// state is never modified. A nil state is treated as the zero value of S.
func Reduce[S any](state *S, patch Patch[S]) *S {
	if patch == nil {
		return state
	}
	var next S
	if state != nil {
		next = *state
	}
	patch(&next)
	return &next
}

// ReduceFunc resolves the patch from the current state before reducing.
//
// It is the partial-producer form of Reduce: produce sees the current
// snapshot and returns the fields to overlay, or nil to keep state as is.
func ReduceFunc[S any](state *S, produce func(*S) Patch[S]) *S {
	if produce == nil {
		return state
	}
	return Reduce(state, produce(state))
}

// Merge chains patches left to right. Nil entries are skipped; if every
// entry is nil the result is nil.
func Merge[S any](patches ...Patch[S]) Patch[S] {
	var live []Patch[S]
	for _, p := range patches {
		if p != nil {
			live = append(live, p)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(s *S) {
		for _, p := range live {
			p(s)
		}
	}
}
