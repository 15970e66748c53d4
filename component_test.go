package hxwrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

type greetProps struct {
	Name  string
	Title string
}

func greet(p greetProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<p>%s %s</p>", p.Title, p.Name)
		return err
	})
}

// tag wraps a view's output in a marker so transform order is visible.
func tag(name string) func(View[greetProps]) View[greetProps] {
	return func(v View[greetProps]) View[greetProps] {
		return func(p greetProps) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				if _, err := io.WriteString(w, "<"+name+">"); err != nil {
					return err
				}
				if err := v(p).Render(ctx, w); err != nil {
					return err
				}
				_, err := io.WriteString(w, "</"+name+">")
				return err
			})
		}
	}
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return sb.String()
}

func TestComposeAppliesInOrder(t *testing.T) {
	view := Compose(greet).Map(tag("a")).Map(tag("b")).Build()

	got := render(t, view(greetProps{Name: "Ada"}))
	want := "<b><a><p> Ada</p></a></b>"
	if got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestComposeEmptyChainIsIdentity(t *testing.T) {
	view := Compose(greet).Unwrap()

	got := render(t, view(greetProps{Name: "Ada", Title: "Dr"}))
	if got != "<p>Dr Ada</p>" {
		t.Errorf("render = %q", got)
	}
}

func TestChainIsImmutable(t *testing.T) {
	base := Compose(greet).Map(tag("a"))
	left := base.Map(tag("l")).Build()
	right := base.Map(tag("r")).Build()

	if got := render(t, left(greetProps{})); got != "<l><a><p> </p></a></l>" {
		t.Errorf("left = %q", got)
	}
	if got := render(t, right(greetProps{})); got != "<r><a><p> </p></a></r>" {
		t.Errorf("right = %q", got)
	}
	if got := render(t, base.Build()(greetProps{})); got != "<a><p> </p></a>" {
		t.Errorf("base = %q", got)
	}
}

func TestThenChangesPropsType(t *testing.T) {
	byName := func(v View[greetProps]) View[string] {
		return func(name string) templ.Component {
			return v(greetProps{Name: name})
		}
	}

	view := Then(Compose(greet).Map(tag("a")), byName).Build()

	got := render(t, view("Grace"))
	if got != "<a><p> Grace</p></a>" {
		t.Errorf("render = %q", got)
	}
}

func TestViewRender(t *testing.T) {
	var sb strings.Builder
	if err := View[greetProps](greet).Render(context.Background(), &sb, greetProps{Name: "x"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if sb.String() != "<p> x</p>" {
		t.Errorf("render = %q", sb.String())
	}
}
