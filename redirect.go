package hxwrap

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// RedirectEngine performs a navigation to `to` during a render.
//
// The writer is the one passed to Render; engines that need response
// headers should type-assert it to http.ResponseWriter.
type RedirectEngine func(ctx context.Context, w io.Writer, to string) error

// Redirector binds a RedirectEngine for use with WithRedirect.
type Redirector struct {
	engine RedirectEngine
}

// MakeWithRedirect returns a Redirector that navigates with engine.
// A nil engine means HTMXRedirect.
func MakeWithRedirect(engine RedirectEngine) Redirector {
	if engine == nil {
		engine = HTMXRedirect
	}
	return Redirector{engine: engine}
}

// WithRedirect renders view when allow returns true. Otherwise it invokes
// the redirector's engine with `to` and renders nothing.
//
// Redirects set headers, so the wrapped view must render before any other
// output is written to the response.
func WithRedirect[P any](r Redirector, view View[P], to string, allow func(ctx context.Context, props P) bool) View[P] {
	engine := r.engine
	if engine == nil {
		engine = HTMXRedirect
	}
	return func(p P) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if allow(ctx, p) {
				return view(p).Render(ctx, w)
			}
			return engine(ctx, w, to)
		})
	}
}

// HTMXRedirect is the default RedirectEngine.
//
// For HTMX requests it sets HX-Redirect so the client navigates. For
// other requests attached with Render or WithRequest it sends a 303 See
// Other. Writers that are not an http.ResponseWriter are left untouched.
func HTMXRedirect(ctx context.Context, w io.Writer, to string) error {
	rw, ok := w.(http.ResponseWriter)
	if !ok {
		return nil
	}
	r, ok := RequestFrom(ctx)
	if !ok || IsHTMX(r) {
		rw.Header().Set("HX-Redirect", to)
		return nil
	}
	http.Redirect(rw, r, to, http.StatusSeeOther)
	return nil
}
