package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Diagnostic pages are only rendered when settings.Debug is true.

func (a *App) debugNotFoundPage(c *requestContext, nf *RouteNotFoundError, status int) *Response {
	title := fmt.Sprintf("%d %s", status, http.StatusText(status))
	return a.debugPage(c, status, diagnosticPage(title, func(w *pageWriter) {
		w.para("No route matches %s %s.", nf.Method, nf.Path)
		if nf.MethodNotAllowed {
			w.para("Allowed methods: %s.", strings.Join(nf.Allowed, ", "))
		}
		w.heading("Route table")
		rows := make([][]string, 0, len(a.routes.Routes()))
		for _, r := range a.routes.Routes() {
			rows = append(rows, []string{strings.Join(r.Methods, ", "), r.Pattern, r.Endpoint})
		}
		w.table([]string{"Methods", "Pattern", "Endpoint"}, rows)
	}))
}

func (a *App) debugErrorPage(c *requestContext, err error, status int) *Response {
	title := fmt.Sprintf("%d %s", status, http.StatusText(status))
	return a.debugPage(c, status, diagnosticPage(title, func(w *pageWriter) {
		w.para("%s %s", c.request.Method, c.request.URL.Path)
		if ep := c.Endpoint(); ep != "" {
			w.para("Endpoint: %s", ep)
		}
		w.heading("Error chain")
		w.list(errorChain(err))

		var pe *PanicError
		if errors.As(err, &pe) {
			w.heading("Stack")
			w.pre(string(pe.Stack))
		}

		if params := c.Params(); len(params) > 0 {
			w.heading("Path variables")
			rows := make([][]string, 0, len(params))
			for _, name := range c.route.Vars {
				rows = append(rows, []string{name, params[name]})
			}
			w.table([]string{"Name", "Value"}, rows)
		}
	}))
}

func (a *App) debugPage(c *requestContext, status int, page templ.Component) *Response {
	var buf bytes.Buffer
	if err := page.Render(c, &buf); err != nil {
		c.LogWarn("diagnostic page failed", slog.Any("error", err))
		return String(status, http.StatusText(status))
	}
	return HTML(status, buf.String())
}

// errorChain lists every error reachable through Unwrap, outermost first.
func errorChain(err error) []string {
	var (
		out   []string
		queue = []error{err}
	)
	for len(queue) > 0 && len(out) < 64 {
		e := queue[0]
		queue = queue[1:]
		if e == nil {
			continue
		}
		out = append(out, fmt.Sprintf("%T: %s", e, e.Error()))
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		case interface{ Unwrap() error }:
			queue = append(queue, u.Unwrap())
		}
	}
	return out
}

// pageWriter writes escaped HTML fragments for diagnostic pages.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *pageWriter) heading(text string) {
	p.raw("<h2>" + templ.EscapeString(text) + "</h2>")
}

func (p *pageWriter) para(format string, args ...any) {
	p.raw("<p>" + templ.EscapeString(fmt.Sprintf(format, args...)) + "</p>")
}

func (p *pageWriter) pre(text string) {
	p.raw("<pre>" + templ.EscapeString(text) + "</pre>")
}

func (p *pageWriter) list(items []string) {
	p.raw("<ol>")
	for _, it := range items {
		p.raw("<li><code>" + templ.EscapeString(it) + "</code></li>")
	}
	p.raw("</ol>")
}

func (p *pageWriter) table(head []string, rows [][]string) {
	p.raw("<table><thead><tr>")
	for _, h := range head {
		p.raw("<th>" + templ.EscapeString(h) + "</th>")
	}
	p.raw("</tr></thead><tbody>")
	for _, row := range rows {
		p.raw("<tr>")
		for _, cell := range row {
			p.raw("<td><code>" + templ.EscapeString(cell) + "</code></td>")
		}
		p.raw("</tr>")
	}
	p.raw("</tbody></table>")
}

const diagnosticStyle = `body{font-family:ui-monospace,monospace;margin:2rem;color:#222}` +
	`h1{color:#b00020}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem;text-align:left}` +
	`pre{background:#f6f6f6;padding:1rem;overflow:auto}`

// diagnosticPage wraps body in a minimal standalone HTML document.
func diagnosticPage(title string, body func(w *pageWriter)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
		p.raw(templ.EscapeString(title))
		p.raw("</title><style>" + diagnosticStyle + "</style></head><body><h1>")
		p.raw(templ.EscapeString(title))
		p.raw("</h1>")
		body(p)
		p.raw("</body></html>")
		return p.err
	})
}
