package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Page wraps body in an HTML document with Header at the top of <main>.
// body may be nil.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+`</title>`+
			`<link rel="stylesheet" href="/static/styles.css"></head>`+
			`<body><main class="min-h-screen flex flex-col items-center">`); err != nil {
			return err
		}

		if err := Header().Render(ctx, w); err != nil {
			return err
		}

		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
