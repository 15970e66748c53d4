package hxwrap

import (
	"github.com/a-h/templ"

	"github.com/pthm/hxwrap/lib/props"
	"github.com/pthm/hxwrap/lib/store"
)

// MakeWithStore creates a store from init. It is store.New under the name
// used alongside WithStore.
func MakeWithStore[S any](init func(set store.SetFunc[S], get store.GetFunc[S]) S) *store.Store[S] {
	return store.New(init)
}

// WithStore injects a selected slice of st into the view's props.
//
// The selector runs against the current state on every render and may
// return a struct, a pointer to a struct or a map[string]any; its fields
// are matched to props by name. Non-zero caller props win over selected
// values. A nil selector selects the whole state.
func WithStore[S, P any](st *store.Store[S], view View[P], selector func(*S) any) View[P] {
	if selector == nil {
		selector = func(s *S) any { return s }
	}
	return func(p P) templ.Component {
		var zero P
		selected, err := props.Spread(zero, store.Select(st, selector))
		if err != nil {
			return failed(mergeError(err))
		}
		return view(props.Defaults(p, selected))
	}
}
