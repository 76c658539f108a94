package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
)

// Content types set by result wrapping and the response helpers.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Result is what a view, module hook or middleware hands back to the dispatcher.
// It is one of Vars, Text or *Response. A nil Result means the context's
// current response.
type Result interface {
	isResult()
}

// Vars is a template variable mapping. Returned from a view it is rendered
// with the route's template.
type Vars map[string]any

func (Vars) isResult() {}

// Text is written as the HTML body of the current response.
type Text string

func (Text) isResult() {}

// Response is a fully built HTTP response.
// It buffers the body so middlewares can inspect or replace it before it is sent.
type Response struct {
	header http.Header
	body   bytes.Buffer
	Status int
}

func (*Response) isResult() {}

// NewResponse creates an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{Status: status, header: make(http.Header)}
}

// HTML builds a text/html response.
func HTML(status int, body string) *Response {
	r := NewResponse(status)
	r.header.Set("Content-Type", ContentTypeHTML)
	r.body.WriteString(body)
	return r
}

// String builds a text/plain response.
func String(status int, body string) *Response {
	r := NewResponse(status)
	r.header.Set("Content-Type", ContentTypeText)
	r.body.WriteString(body)
	return r
}

// JSON builds a JSON response. It returns a Result so views can return it directly.
func JSON(status int, v any) (Result, error) {
	r := NewResponse(status)
	r.header.Set("Content-Type", ContentTypeJSON)
	if err := json.NewEncoder(&r.body).Encode(v); err != nil {
		return nil, err
	}
	return r, nil
}

// Redirect builds a redirect response. Status defaults to 302 when not a 3xx code.
func Redirect(status int, url string) *Response {
	if status < 300 || status > 399 {
		status = http.StatusFound
	}
	r := NewResponse(status)
	r.header.Set("Location", url)
	return r
}

// NoContent builds a 204 response.
func NoContent() *Response {
	return NewResponse(http.StatusNoContent)
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// Write appends to the body.
func (r *Response) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

// WriteString appends to the body.
func (r *Response) WriteString(s string) (int, error) {
	return r.body.WriteString(s)
}

// SetBody replaces the body.
func (r *Response) SetBody(b []byte) {
	r.body.Reset()
	r.body.Write(b)
}

// Body returns the buffered body.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// SetCookie adds a Set-Cookie header.
func (r *Response) SetCookie(c *http.Cookie) {
	if v := c.String(); v != "" {
		r.Header().Add("Set-Cookie", v)
	}
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header().Get("Content-Type")
}

// Send writes the response to w.
func (r *Response) Send(w http.ResponseWriter) error {
	h := w.Header()
	for k, vv := range r.header {
		h[k] = append(h[k][:0:0], vv...)
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if r.body.Len() == 0 || !bodyAllowed(status) {
		w.WriteHeader(status)
		return nil
	}
	if h.Get("Content-Length") == "" {
		h.Set("Content-Length", strconv.Itoa(r.body.Len()))
	}
	w.WriteHeader(status)
	_, err := w.Write(r.body.Bytes())
	return err
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
