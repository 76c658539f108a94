package internal

import "runtime/debug"

// invoke runs the matched view wrapped by its module's Begin and End hooks.
// Panics are recovered into *PanicError so exception processors see them.
func (a *App) invoke(c *requestContext) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	route := c.route

	if b, ok := route.module.(BeginHook); ok {
		res, err = b.Begin(c)
		if err != nil || res != nil {
			return res, err
		}
	}

	res, err = route.view(c)
	if err != nil {
		return nil, err
	}

	if e, ok := route.module.(EndHook); ok {
		override, err := e.End(c, res)
		if err != nil {
			return nil, err
		}
		if override != nil {
			res = override
		}
	}

	return res, nil
}
