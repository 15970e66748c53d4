package hxwrap

import (
	"github.com/a-h/templ"

	"github.com/pthm/hxwrap/lib/props"
)

// WithDefault fills zero-valued props from defaults before rendering.
//
// Caller props win for every non-zero field. A field cannot be forced back
// to its zero value through this wrapper; use a pointer field when that
// distinction matters.
func WithDefault[P any](view View[P], defaults P) View[P] {
	return func(p P) templ.Component {
		return view(props.Defaults(p, defaults))
	}
}
