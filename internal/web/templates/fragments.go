// Package templates holds the HTML fragments returned to HTMX requests.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/labelmerge/internal/core"
)

// ErrorAlert renders a dismissible error box with the user message, the
// suggested action and the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		f := core.NewHTMLWriter(w)
		f.Raw(`<div class="alert alert-error" role="alert">`)
		f.Raw(`<p class="alert-message">`)
		f.Text(message)
		f.Raw(`</p>`)
		if action != "" {
			f.Raw(`<p class="alert-action">`)
			f.Text(action)
			f.Raw(`</p>`)
		}
		if code != "" {
			f.Raw(`<p class="alert-code">Error code: `)
			f.Text(code)
			f.Raw(`</p>`)
		}
		f.Raw(`</div>`)
		return f.Err()
	})
}

// PreviewData is what the mapping step shows next to the field selectors.
type PreviewData struct {
	Lines        []string
	LabelCount   int
	SheetsNeeded int
	FormatName   string
	Missing      []string // Display labels of unmapped required fields
}

// LabelPreview renders the first label as it will print, plus totals.
func LabelPreview(p PreviewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		f := core.NewHTMLWriter(w)
		f.Raw(`<div class="label-preview">`)

		if len(p.Lines) == 0 {
			f.Raw(`<p class="label-preview-empty">No label text yet. Map at least a name or address column.</p>`)
		} else {
			f.Label(p.Lines)
		}

		f.Raw(`<p class="label-preview-summary">`)
		f.Text(fmt.Sprintf("%d labels on %d sheets of %s", p.LabelCount, p.SheetsNeeded, p.FormatName))
		f.Raw(`</p>`)

		if len(p.Missing) > 0 {
			f.Raw(`<ul class="label-preview-missing">`)
			for _, name := range p.Missing {
				f.Raw(`<li>`)
				f.Text(name + " is required")
				f.Raw(`</li>`)
			}
			f.Raw(`</ul>`)
		}

		f.Raw(`</div>`)
		return f.Err()
	})
}
