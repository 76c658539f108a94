package internal

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"
	"strings"
)

// ServeHTTP dispatches a request:
// resolve route, build context, request middlewares, view (or short-circuit),
// response middlewares, finalize.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := a.state.Load()
	c := a.acquire(r, state)
	defer a.release(c)

	defer func() {
		if rec := recover(); rec != nil {
			a.fail(w, c, &PanicError{Value: rec, Stack: debug.Stack()})
		}
	}()

	match, err := a.routes.Resolve(r.Method, r.URL.Path)
	if err != nil {
		a.notFound(w, c, err)
		return
	}
	c.route = match.Route
	c.params = match.Params

	if err := a.fire(c, TopicSetLocalEnv, Context(c)); err != nil {
		a.fail(w, c, err)
		return
	}

	resp, err := a.dispatch(c, state)
	if err != nil {
		a.fail(w, c, err)
		return
	}
	a.send(w, c, resp)
}

func (a *App) acquire(r *http.Request, state *appState) *requestContext {
	c := a.pool.Get().(*requestContext)
	c.app = a
	c.state = state
	c.request = r
	c.response = NewResponse(http.StatusOK)
	c.logger = a.logger
	return c
}

// release clears every per-request field before the context is reused.
func (a *App) release(c *requestContext) {
	c.reset()
	a.pool.Put(c)
}

// dispatch runs the middleware chain around the view and returns the
// response to send. A returned error escalates to the error page.
func (a *App) dispatch(c *requestContext, state *appState) (*Response, error) {
	run := newChainRun(a, state)

	res, short, err := run.processRequest(c)
	if err == nil && !short {
		res, err = a.invoke(c)
	}
	if err != nil {
		res, err = a.handleViewError(c, run, err)
		if err != nil {
			return nil, err
		}
	}

	resp, err := a.wrap(c, res)
	if appErr, ok := AsApplicationError(err); ok {
		_, err = a.renderApplicationError(c, appErr)
		resp = c.response
	}
	if err != nil {
		return nil, err
	}
	c.response = resp

	return run.processResponse(c, resp)
}

// handleViewError renders application errors and offers everything else to
// the exception processors. Unhandled errors are returned, possibly replaced
// by a processor.
func (a *App) handleViewError(c *requestContext, run *chainRun, err error) (Result, error) {
	if appErr, ok := AsApplicationError(err); ok {
		return a.renderApplicationError(c, appErr)
	}

	c.exception = err
	res, err := run.processException(c, err)
	if err != nil {
		if appErr, ok := AsApplicationError(err); ok {
			return a.renderApplicationError(c, appErr)
		}
		return nil, err
	}
	return res, nil
}

func (a *App) renderApplicationError(c *requestContext, appErr *ApplicationError) (Result, error) {
	out, err := a.render(c, appErr.Template, appErr.Vars)
	if err != nil {
		return nil, err
	}
	status := appErr.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.response.Status = status
	setHTMLBody(c.response, out)
	return c.response, nil
}

// notFound answers unmatched requests without running middlewares.
func (a *App) notFound(w http.ResponseWriter, c *requestContext, err error) {
	status := statusOf(err)

	var nf *RouteNotFoundError
	if !errors.As(err, &nf) {
		nf = &RouteNotFoundError{Method: c.request.Method, Path: c.request.URL.Path}
	}

	c.LogDebug("route not found",
		slog.String("method", nf.Method),
		slog.String("path", nf.Path),
		slog.Int("status", status),
	)

	var resp *Response
	if s := c.Settings(); s != nil && s.Debug {
		resp = a.debugNotFoundPage(c, nf, status)
	} else {
		resp = a.templatePage(c, s.NotFoundTemplate, status, Vars{
			"status":  status,
			"title":   http.StatusText(status),
			"message": http.StatusText(status),
			"method":  nf.Method,
			"path":    nf.Path,
		})
	}
	if nf.MethodNotAllowed {
		resp.Header().Set("Allow", strings.Join(nf.Allowed, ", "))
	}
	a.send(w, c, resp)
}

// fail logs an escalated error and sends the error page. An ApplicationError
// raised outside the view still renders its own template.
func (a *App) fail(w http.ResponseWriter, c *requestContext, err error) {
	if appErr, ok := AsApplicationError(err); ok {
		c.response = NewResponse(http.StatusOK)
		_, rerr := a.renderApplicationError(c, appErr)
		if rerr == nil {
			a.send(w, c, c.response)
			return
		}
		err = rerr
	}

	status := statusOf(err)

	attrs := []any{
		slog.Int("status", status),
		slog.String("method", c.request.Method),
		slog.String("path", c.request.URL.Path),
		slog.Any("error", err),
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	if status >= http.StatusInternalServerError {
		c.LogError("request failed", attrs...)
	} else {
		c.LogInfo("request failed", attrs...)
	}

	s := c.Settings()
	if s != nil && s.Debug {
		a.send(w, c, a.debugErrorPage(c, err, status))
		return
	}

	vars := Vars{
		"status":  status,
		"title":   http.StatusText(status),
		"message": http.StatusText(status),
	}
	if he := AsHTTPError(err); he != nil {
		maps.Copy(vars, he.vars())
		vars["status"] = status
	}

	name := s.ErrorTemplate
	if status == http.StatusNotFound {
		name = s.NotFoundTemplate
	}
	a.send(w, c, a.templatePage(c, name, status, vars))
}

// templatePage renders an error template, falling back to plain text when
// no renderer is configured or rendering fails.
func (a *App) templatePage(c *requestContext, name string, status int, vars Vars) *Response {
	if a.renderer != nil && name != "" {
		out, err := a.render(c, name, vars)
		if err == nil {
			return HTML(status, out)
		}
		c.LogWarn("error template failed", slog.String("template", name), slog.Any("error", err))
	}
	return String(status, http.StatusText(status))
}

func (a *App) send(w http.ResponseWriter, c *requestContext, resp *Response) {
	if resp == nil {
		resp = c.response
	}
	if err := resp.Send(w); err != nil {
		c.LogDebug("write response failed", slog.Any("error", err))
	}
}
