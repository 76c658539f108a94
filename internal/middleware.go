package internal

import (
	"fmt"
	"slices"

	"github.com/dmitrymomot/relay/pkg/settings"
)

// DefaultMiddlewareOrder is used for specs that leave Order at zero.
const DefaultMiddlewareOrder = 500

// RequestProcessor runs before the view, in ascending order.
// A non-nil result short-circuits: later request processors and the view are skipped.
type RequestProcessor interface {
	ProcessRequest(c Context) (Result, error)
}

// ResponseProcessor runs after a response exists, in descending order.
// The returned response replaces the current one; nil keeps it.
type ResponseProcessor interface {
	ProcessResponse(c Context, resp *Response) (*Response, error)
}

// ExceptionProcessor runs when the view fails, in descending order.
// The first non-nil result becomes the response; the rest are skipped.
type ExceptionProcessor interface {
	ProcessException(c Context, err error) (Result, error)
}

// MiddlewareFactory builds a per-request middleware instance.
// The instance implements any of RequestProcessor, ResponseProcessor and ExceptionProcessor.
type MiddlewareFactory func(app *App, s *settings.Settings) any

// MiddlewareSpec declares a middleware by name.
// Settings may enable, disable or reorder specs by name.
type MiddlewareSpec struct {
	New   MiddlewareFactory
	Name  string
	Order int
}

// MiddlewareFuncs adapts plain functions to the processor interfaces.
// Nil fields are skipped.
type MiddlewareFuncs struct {
	Request   func(c Context) (Result, error)
	Response  func(c Context, resp *Response) (*Response, error)
	Exception func(c Context, err error) (Result, error)
}

func (m MiddlewareFuncs) ProcessRequest(c Context) (Result, error) {
	if m.Request == nil {
		return nil, nil
	}
	return m.Request(c)
}

func (m MiddlewareFuncs) ProcessResponse(c Context, resp *Response) (*Response, error) {
	if m.Response == nil {
		return resp, nil
	}
	return m.Response(c, resp)
}

func (m MiddlewareFuncs) ProcessException(c Context, err error) (Result, error) {
	if m.Exception == nil {
		return nil, nil
	}
	return m.Exception(c, err)
}

// buildChain selects and orders the middleware specs for a settings snapshot.
// Without a settings list every registered spec is enabled.
func buildChain(specs []MiddlewareSpec, s *settings.Settings) ([]MiddlewareSpec, error) {
	entries, err := s.MiddlewareEntries()
	if err != nil {
		return nil, err
	}

	withDefault := func(spec MiddlewareSpec) MiddlewareSpec {
		if spec.Order == 0 {
			spec.Order = DefaultMiddlewareOrder
		}
		return spec
	}

	var chain []MiddlewareSpec
	if len(entries) == 0 {
		for _, spec := range specs {
			chain = append(chain, withDefault(spec))
		}
	} else {
		byName := make(map[string]MiddlewareSpec, len(specs))
		for _, spec := range specs {
			byName[spec.Name] = spec
		}
		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			spec, ok := byName[e.Name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownMiddleware, e.Name)
			}
			if _, dup := seen[e.Name]; dup {
				continue
			}
			seen[e.Name] = struct{}{}
			spec = withDefault(spec)
			if e.HasOrder {
				spec.Order = e.Order
			}
			chain = append(chain, spec)
		}
	}

	slices.SortStableFunc(chain, func(a, b MiddlewareSpec) int {
		return a.Order - b.Order
	})
	return chain, nil
}

// chainRun holds one request's middleware instances.
// Instances are built lazily and at most once.
type chainRun struct {
	app       *App
	settings  *settings.Settings
	specs     []MiddlewareSpec
	instances []any
	built     []bool
	reached   int // request phase ran for specs[:reached]
}

func newChainRun(app *App, state *appState) *chainRun {
	return &chainRun{
		app:       app,
		settings:  state.settings,
		specs:     state.chain,
		instances: make([]any, len(state.chain)),
		built:     make([]bool, len(state.chain)),
	}
}

func (r *chainRun) instance(i int) any {
	if !r.built[i] {
		r.built[i] = true
		if f := r.specs[i].New; f != nil {
			r.instances[i] = f(r.app, r.settings)
		}
	}
	return r.instances[i]
}

// processRequest runs request processors in ascending order.
// shortCircuit reports whether a processor produced a result.
func (r *chainRun) processRequest(c Context) (res Result, shortCircuit bool, err error) {
	for i := range r.specs {
		r.reached = i + 1
		p, ok := r.instance(i).(RequestProcessor)
		if !ok {
			continue
		}
		res, err = p.ProcessRequest(c)
		if err != nil {
			return nil, false, fmt.Errorf("middleware %s: %w", r.specs[i].Name, err)
		}
		if res != nil {
			return res, true, nil
		}
	}
	return nil, false, nil
}

// processException offers err to exception processors in descending order,
// starting from the last middleware whose request phase ran. A processor
// returning an error replaces err for the processors after it; an
// ApplicationError stops the walk. The error left when nobody produced a
// result is returned.
func (r *chainRun) processException(c Context, err error) (Result, error) {
	for i := r.reached - 1; i >= 0; i-- {
		p, ok := r.instance(i).(ExceptionProcessor)
		if !ok {
			continue
		}
		res, perr := p.ProcessException(c, err)
		if perr != nil {
			err = fmt.Errorf("middleware %s: %w", r.specs[i].Name, perr)
			if IsApplicationError(perr) {
				return nil, err
			}
			continue
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, err
}

// processResponse runs response processors in descending order over the whole chain.
func (r *chainRun) processResponse(c Context, resp *Response) (*Response, error) {
	for i := len(r.specs) - 1; i >= 0; i-- {
		p, ok := r.instance(i).(ResponseProcessor)
		if !ok {
			continue
		}
		next, err := p.ProcessResponse(c, resp)
		if err != nil {
			return nil, fmt.Errorf("middleware %s: %w", r.specs[i].Name, err)
		}
		if next != nil {
			resp = next
		}
	}
	return resp, nil
}
