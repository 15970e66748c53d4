package hxwrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/a-h/templ"
)

// TestResult holds the result of rendering a component for testing.
//
// Provides convenience methods for asserting on HTML content, headers,
// status codes and redirects.
type TestResult struct {
	HTML        string
	StatusCode  int
	Headers     http.Header
	RedirectURL string
}

// TestRender renders a component with a background context and returns
// testable output.
//
//	result, err := hxwrap.TestRender(Profile(props))
//	if !result.HTMLContains("expected text") {
//	    t.Fatal("missing expected content")
//	}
func TestRender(component templ.Component) (*TestResult, error) {
	return TestRenderWithContext(context.Background(), component)
}

// TestRenderWithContext renders a component with a custom context.
//
// Use this when testing wrappers that read values from context, such as
// feature flags:
//
//	ctx := hxwrap.WithFlags(context.Background(), "beta")
//	result, err := hxwrap.TestRenderWithContext(ctx, Beta(props))
func TestRenderWithContext(ctx context.Context, component templ.Component) (*TestResult, error) {
	rec := httptest.NewRecorder()
	if err := component.Render(ctx, rec); err != nil {
		return nil, err
	}
	return resultFrom(rec), nil
}

// TestView renders view(props) with a background context.
func TestView[P any](view View[P], props P) (*TestResult, error) {
	return TestRender(view(props))
}

// TestRequest renders a component through Render for the given request,
// so request-aware wrappers such as redirects behave as they would in a
// handler. Set HX-Request on r to simulate an HTMX request.
func TestRequest(r *http.Request, component templ.Component) (*TestResult, error) {
	rec := httptest.NewRecorder()
	if err := Render(rec, r, component); err != nil {
		return nil, err
	}
	return resultFrom(rec), nil
}

func resultFrom(rec *httptest.ResponseRecorder) *TestResult {
	result := &TestResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}
	if redirect := rec.Header().Get("HX-Redirect"); redirect != "" {
		result.RedirectURL = redirect
	} else if loc := rec.Header().Get("Location"); loc != "" {
		result.RedirectURL = loc
	}
	return result
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// IsEmpty checks if nothing was rendered.
func (r *TestResult) IsEmpty() bool {
	return r.HTML == ""
}

// WasRedirected checks if the response was a redirect.
func (r *TestResult) WasRedirected() bool {
	return r.RedirectURL != ""
}

// RedirectedTo checks if the response was redirected to a specific URL.
func (r *TestResult) RedirectedTo(url string) bool {
	return r.RedirectURL == url
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header is set with the given value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}
