package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const (
	headerClass  = "flex flex-col gap-16 items-center"
	brandClass   = "flex gap-8 justify-center items-center"
	dividerClass = "w-full p-[1px] bg-gradient-to-r from-transparent via-foreground/10 to-transparent my-8"
)

var headerMarkup = `<div class="` + headerClass + `">` +
	`<div class="` + brandClass + `"></div>` +
	`<div class="` + dividerClass + `"></div>` +
	`</div>`

// Header renders the page heading: an empty brand row above a thin gradient
// divider. It takes no input and always renders the same markup.
func Header() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, headerMarkup)
		return err
	})
}
