package hxwrap

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
)

type requestKey struct{}

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component with the
// request attached to the context, so wrappers such as HTMXRedirect can
// tell HTMX requests from full page loads:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    hxwrap.Render(w, r, Profile(props))
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(WithRequest(r.Context(), r), w)
}

// WithRequest attaches r to ctx. Render does this for you.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFrom returns the request attached by Render or WithRequest.
func RequestFrom(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok && r != nil
}

// IsHTMX returns true if the request originated from HTMX.
//
// HTMX sends HX-Request: true on all requests.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
