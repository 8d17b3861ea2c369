package core

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// HTMLWriter writes markup and escaped text, keeping the first write error
// so templ components can be written as straight-line code.
type HTMLWriter struct {
	w   io.Writer
	err error
}

// NewHTMLWriter wraps w.
func NewHTMLWriter(w io.Writer) *HTMLWriter {
	return &HTMLWriter{w: w}
}

// Raw writes s unescaped. Use it only for trusted markup.
func (h *HTMLWriter) Raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// Text writes s HTML-escaped.
func (h *HTMLWriter) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Printf writes formatted trusted markup.
func (h *HTMLWriter) Printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

// Label writes one label box, the same markup the printed sheet uses.
func (h *HTMLWriter) Label(lines []string) {
	h.Raw(`<div class="label">`)
	for _, line := range lines {
		h.Raw(`<div class="label-line">`)
		h.Text(line)
		h.Raw(`</div>`)
	}
	h.Raw(`</div>`)
}

// Err returns the first write error.
func (h *HTMLWriter) Err() error {
	return h.err
}
