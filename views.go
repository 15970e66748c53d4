package hxwrap

import (
	"context"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// DefaultPlaceholder renders an empty busy marker.
//
// Style it with CSS, or pass your own Views.Placeholder to WithAsync.
func DefaultPlaceholder() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="hxwrap-pending" aria-busy="true"></div>`)
		return err
	})
}

// DefaultCatch renders the error message and retry count in an alert
// container. The message is HTML-escaped.
func DefaultCatch(p CatchProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		msg := "unknown error"
		if p.Err != nil {
			msg = p.Err.Error()
		}

		var sb strings.Builder
		sb.WriteString(`<div class="hxwrap-error" role="alert" data-retries="`)
		sb.WriteString(strconv.Itoa(p.Retries))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(msg))
		sb.WriteString(`</div>`)

		_, err := io.WriteString(w, sb.String())
		return err
	})
}
