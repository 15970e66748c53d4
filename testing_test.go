package hxwrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTestResultHelpers(t *testing.T) {
	result := &TestResult{
		HTML:        "<div>hello world</div>",
		StatusCode:  http.StatusOK,
		Headers:     http.Header{"X-Test": []string{"1"}},
		RedirectURL: "/next",
	}

	if !result.HTMLContains("hello") {
		t.Error("HTMLContains(hello) = false")
	}
	if !result.HTMLContainsAll("hello", "world") {
		t.Error("HTMLContainsAll(hello, world) = false")
	}
	if result.HTMLContainsAll("hello", "mars") {
		t.Error("HTMLContainsAll(hello, mars) = true")
	}
	if result.IsEmpty() {
		t.Error("IsEmpty() = true")
	}
	if !result.WasRedirected() || !result.RedirectedTo("/next") {
		t.Error("redirect helpers disagree with RedirectURL")
	}
	if !result.HasStatus(http.StatusOK) {
		t.Error("HasStatus(200) = false")
	}
	if !result.HasHeader("X-Test", "1") {
		t.Error("HasHeader(X-Test, 1) = false")
	}
}

func TestTestRequestCapturesRedirect(t *testing.T) {
	view := WithRedirect(MakeWithRedirect(nil), greet, "/login", func(_ context.Context, _ greetProps) bool {
		return false
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")

	result, err := TestRequest(req, view(greetProps{}))
	if err != nil {
		t.Fatalf("TestRequest() error = %v", err)
	}
	if !result.RedirectedTo("/login") {
		t.Errorf("RedirectURL = %q, want /login", result.RedirectURL)
	}
}

func TestDefaultViews(t *testing.T) {
	result, err := TestRender(DefaultPlaceholder())
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !result.HTMLContains(`aria-busy="true"`) {
		t.Errorf("placeholder HTML = %q", result.HTML)
	}

	result, err = TestRender(DefaultCatch(CatchProps{Retries: 2}))
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !result.HTMLContainsAll(`data-retries="2"`, "unknown error") {
		t.Errorf("catch HTML = %q", result.HTML)
	}
}
