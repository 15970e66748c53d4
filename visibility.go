package hxwrap

import (
	"context"

	"github.com/a-h/templ"
)

// WithVisibility renders view only when visible returns true for the props
// and render context. Otherwise it renders nothing.
func WithVisibility[P any](view View[P], visible func(ctx context.Context, props P) bool) View[P] {
	return func(p P) templ.Component {
		return deferred(func(ctx context.Context) templ.Component {
			if !visible(ctx, p) {
				return nil
			}
			return view(p)
		})
	}
}
