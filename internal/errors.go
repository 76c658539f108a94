package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Build-time errors returned from New.
var (
	ErrDuplicateEndpoint   = errors.New("endpoint already bound to a different view")
	ErrDuplicateRoute      = errors.New("route already registered")
	ErrDuplicateMiddleware = errors.New("middleware registered twice")
	ErrUnknownMiddleware   = errors.New("unknown middleware")
	ErrInvalidPattern      = errors.New("invalid route pattern")
	ErrInvalidModule       = errors.New("invalid module")
	ErrNilView             = errors.New("nil view")
	ErrUnnamedView         = errors.New("anonymous view needs an explicit name")
)

// Dispatch-time errors.
var (
	ErrRouteNotFound     = errors.New("route not found")
	ErrUnknownEndpoint   = errors.New("unknown endpoint")
	ErrMissingURLParam   = errors.New("missing url parameter")
	ErrNoRenderer        = errors.New("no template renderer configured")
	ErrUnsupportedResult = errors.New("unsupported result type")
)

// RouteNotFoundError reports a path that matched no route.
// When the path exists under other methods, MethodNotAllowed is set and
// Allowed lists them.
type RouteNotFoundError struct {
	Method           string
	Path             string
	Allowed          []string
	MethodNotAllowed bool
}

func (e *RouteNotFoundError) Error() string {
	if e.MethodNotAllowed {
		return fmt.Sprintf("method %s not allowed for %s (allowed: %s)", e.Method, e.Path, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("no route for %s %s", e.Method, e.Path)
}

func (e *RouteNotFoundError) Is(target error) bool {
	return target == ErrRouteNotFound
}

// StatusCode returns 405 for method mismatches and 404 otherwise.
func (e *RouteNotFoundError) StatusCode() int {
	if e.MethodNotAllowed {
		return http.StatusMethodNotAllowed
	}
	return http.StatusNotFound
}

// ReservedNameError is returned when an endpoint or path variable uses a
// name the framework injects into views and templates.
type ReservedNameError struct {
	Name    string
	Pattern string
	Kind    string // "endpoint" or "variable"
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("%s name %q in route %q is reserved", e.Kind, e.Name, e.Pattern)
}

// ApplicationError asks the dispatcher to render a specific template with
// the given variables instead of continuing normal processing.
// Views and hooks return it like any other error.
type ApplicationError struct {
	Vars     Vars
	Template string
	Status   int
}

// NewApplicationError creates an ApplicationError rendered with status 200.
func NewApplicationError(template string, vars Vars) *ApplicationError {
	return &ApplicationError{Template: template, Vars: vars, Status: http.StatusOK}
}

// WithStatus sets the response status and returns the error for chaining.
func (e *ApplicationError) WithStatus(code int) *ApplicationError {
	e.Status = code
	return e
}

func (e *ApplicationError) Error() string {
	return "application error: render " + e.Template
}

// IsApplicationError reports whether err carries an ApplicationError.
func IsApplicationError(err error) bool {
	_, ok := AsApplicationError(err)
	return ok
}

// AsApplicationError extracts an ApplicationError from the error chain.
func AsApplicationError(err error) (*ApplicationError, bool) {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanicError reports whether err carries a recovered panic.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// HTTPError represents an HTTP error with all data needed for rendering
// the error template.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Title is an optional title for the error (defaults derived from Code).
	Title string

	// Detail is an optional extended description.
	Detail string

	// ErrorCode is an application-specific error code.
	ErrorCode string

	// RequestID is the request tracking ID.
	RequestID string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// vars exposes the error to the error template.
func (e *HTTPError) vars() Vars {
	title := e.Title
	if title == "" {
		title = e.StatusText()
	}
	return Vars{
		"status":     e.Code,
		"title":      title,
		"message":    e.Message,
		"detail":     e.Detail,
		"error_code": e.ErrorCode,
		"request_id": e.RequestID,
	}
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// AsHTTPError extracts the HTTPError from the error chain.
// Returns nil if the chain carries none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// statusOf maps an escalated error to a response status.
func statusOf(err error) int {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		if code := coded.StatusCode(); code >= 400 && code < 600 {
			return code
		}
	}
	return http.StatusInternalServerError
}
