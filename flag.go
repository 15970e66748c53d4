package hxwrap

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

type flagsKey struct{}

// FlagSet is the set of enabled feature flags for a render.
type FlagSet map[string]struct{}

// Has reports whether every name is enabled. An empty list is trivially
// enabled.
func (f FlagSet) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := f[n]; !ok {
			return false
		}
	}
	return true
}

// WithFlags returns a context carrying flags as the active flag set.
//
// A nested call replaces the set rather than adding to it.
func WithFlags(ctx context.Context, flags ...string) context.Context {
	set := make(FlagSet, len(flags))
	for _, f := range flags {
		set[f] = struct{}{}
	}
	return context.WithValue(ctx, flagsKey{}, set)
}

// FlagsFrom returns the active flag set and whether a provider exists.
func FlagsFrom(ctx context.Context) (FlagSet, bool) {
	set, ok := ctx.Value(flagsKey{}).(FlagSet)
	return set, ok
}

// FlagsEnabled reports whether a flag provider exists in ctx and enables
// every expected flag. Without a provider nothing is enabled, not even
// the empty list.
func FlagsEnabled(ctx context.Context, expected ...string) bool {
	set, ok := FlagsFrom(ctx)
	if !ok {
		return false
	}
	return set.Has(expected...)
}

// FlagProvider renders children with flags installed in the context.
//
//	@hxwrap.FlagProvider([]string{"beta"}, page())
func FlagProvider(flags []string, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return children.Render(WithFlags(ctx, flags...), w)
	})
}

// WithFlag renders view only when FlagsEnabled(ctx, expected...) holds at
// render time. Otherwise it renders nothing.
func WithFlag[P any](view View[P], expected ...string) View[P] {
	return func(p P) templ.Component {
		return deferred(func(ctx context.Context) templ.Component {
			if !FlagsEnabled(ctx, expected...) {
				return nil
			}
			return view(p)
		})
	}
}
