package hxwrap

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// View is a presentation unit: it renders props into a templ component.
//
// Wrappers in this package take a View and return a new View with the
// same or a reduced props type. A View should be cheap and side-effect
// free; work that needs the render context belongs inside the returned
// component.
type View[P any] func(props P) templ.Component

// Render is a convenience for v(props).Render(ctx, w).
func (v View[P]) Render(ctx context.Context, w io.Writer, props P) error {
	return v(props).Render(ctx, w)
}

// CatchProps is what the error view receives.
type CatchProps struct {
	Retries int
	Err     error
}

// Views holds the placeholder and error views used by WithAsync.
//
// A shared Views value plays the role of an async-wrapper factory: bind
// application-wide views once and pass them to every WithAsync call.
type Views struct {
	// Placeholder renders while data is loading. Nil means
	// DefaultPlaceholder.
	Placeholder func() templ.Component

	// Catch renders a failed fetch. Nil means DefaultCatch.
	Catch func(CatchProps) templ.Component
}

func (v Views) placeholder() templ.Component {
	if v.Placeholder == nil {
		return DefaultPlaceholder()
	}
	return v.Placeholder()
}

func (v Views) catch(p CatchProps) templ.Component {
	if v.Catch == nil {
		return DefaultCatch(p)
	}
	return v.Catch(p)
}

// deferred builds a component that decides what to render at Render time,
// when the context is available.
func deferred(fn func(ctx context.Context) templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		c := fn(ctx)
		if c == nil {
			return nil
		}
		return c.Render(ctx, w)
	})
}

// failed is a component whose Render returns err.
func failed(err error) templ.Component {
	return templ.ComponentFunc(func(context.Context, io.Writer) error {
		return err
	})
}
