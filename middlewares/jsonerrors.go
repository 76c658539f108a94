package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// JSONErrorsName is the settings name of the JSON errors middleware.
const JSONErrorsName = "json_errors"

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// JSONErrorsConfig configures the JSON errors middleware.
type JSONErrorsConfig struct {
	StackSize         int  // Max panic stack trace size in logs (default: 4096)
	DisablePrintStack bool // Disable panic stack traces in logs
	Order             int
}

// JSONErrorsOption configures JSONErrorsConfig.
type JSONErrorsOption func(*JSONErrorsConfig)

// WithStackSize sets the maximum logged stack trace size.
func WithStackSize(size int) JSONErrorsOption {
	return func(cfg *JSONErrorsConfig) {
		cfg.StackSize = size
	}
}

// WithDisablePrintStack disables including stack traces in logs.
func WithDisablePrintStack() JSONErrorsOption {
	return func(cfg *JSONErrorsConfig) {
		cfg.DisablePrintStack = true
	}
}

// WithJSONErrorsOrder sets the default chain position.
func WithJSONErrorsOrder(order int) JSONErrorsOption {
	return func(cfg *JSONErrorsConfig) {
		cfg.Order = order
	}
}

// ErrorBody is the JSON document written for failed API requests.
type ErrorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Status    int    `json:"status"`
}

// JSONErrors returns middleware that answers failed requests asking for JSON
// with an ErrorBody instead of the HTML error template.
//
// Server errors are logged here since the dispatcher no longer sees them.
// Panic values and messages of non-HTTP errors never reach the client.
func JSONErrors(opts ...JSONErrorsOption) internal.MiddlewareSpec {
	cfg := &JSONErrorsConfig{
		StackSize: DefaultStackSize,
		Order:     50,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return internal.MiddlewareSpec{
		Name:  JSONErrorsName,
		Order: cfg.Order,
		New: func(*internal.App, *settings.Settings) any {
			return internal.MiddlewareFuncs{
				Exception: func(c internal.Context, err error) (internal.Result, error) {
					return jsonError(c, cfg, err)
				},
			}
		},
	}
}

func jsonError(c internal.Context, cfg *JSONErrorsConfig, err error) (internal.Result, error) {
	if !acceptsJSON(c.Request()) || internal.IsApplicationError(err) {
		return nil, nil
	}

	body := ErrorBody{
		Status:    http.StatusInternalServerError,
		RequestID: GetRequestID(c),
	}
	var sc interface{ StatusCode() int }
	if he := internal.AsHTTPError(err); he != nil {
		body.Status = he.StatusCode()
		body.Message = he.Message
		body.Code = he.ErrorCode
		body.Detail = he.Detail
	} else if errors.As(err, &sc) {
		body.Status = sc.StatusCode()
	}
	body.Error = http.StatusText(body.Status)
	if body.Message == "" {
		body.Message = body.Error
	}

	if body.Status >= http.StatusInternalServerError {
		logFailure(c, cfg, err, body.Status)
	}

	return internal.JSON(body.Status, body)
}

func logFailure(c internal.Context, cfg *JSONErrorsConfig, err error, status int) {
	attrs := []any{"error", err, "status", status}

	var pe *internal.PanicError
	if errors.As(err, &pe) && !cfg.DisablePrintStack {
		stack := pe.Stack
		if len(stack) > cfg.StackSize {
			stack = stack[:cfg.StackSize]
		}
		attrs = append(attrs, "stack", string(stack))
	}
	c.LogError("request failed", attrs...)
}

func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
