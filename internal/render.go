package internal

import (
	"context"
	"fmt"
	"maps"
)

// Renderer renders a named template with variables.
// pkg/templates.Registry is the default implementation.
type Renderer interface {
	Render(ctx context.Context, name string, vars map[string]any) (string, error)
}

// TagAware renderers receive the template tag handlers collected from
// the get_template_tag_handlers topic at startup.
type TagAware interface {
	SetTagHandlers(tags map[string]any)
}

// render renders a template with the default env, reserved request
// variables and vars merged, firing the template topics around it.
func (a *App) render(c *requestContext, name string, vars Vars) (string, error) {
	if a.renderer == nil {
		return "", ErrNoRenderer
	}

	env := make(Vars, len(a.defaultEnv)+len(vars)+5)
	maps.Copy(env, a.defaultEnv)
	maps.Copy(env, vars)
	env["application"] = a
	env["settings"] = c.Settings()
	env["request"] = c.request
	env["response"] = c.response
	env["env"] = a.defaultEnv

	if err := a.fire(c, TopicPrepareTemplateEnv, env); err != nil {
		return "", err
	}
	if err := a.fire(c, TopicBeforeRenderTemplate, name, env); err != nil {
		return "", err
	}

	out, err := a.renderer.Render(c, name, env)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	if err := a.fire(c, TopicAfterRenderTemplate, name, env, &out); err != nil {
		return "", err
	}
	return out, nil
}

// wrap turns any Result into the response to send.
// Vars render with the context's template, Text becomes the HTML body,
// *Response passes through and nil selects the current response.
func (a *App) wrap(c *requestContext, res Result) (*Response, error) {
	switch v := res.(type) {
	case nil:
		return c.response, nil
	case *Response:
		if v == nil {
			return c.response, nil
		}
		return v, nil
	case Text:
		setHTMLBody(c.response, string(v))
		return c.response, nil
	case Vars:
		name := c.Template()
		out, err := a.render(c, name, v)
		if err != nil {
			return nil, err
		}
		setHTMLBody(c.response, out)
		return c.response, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedResult, res)
	}
}

func setHTMLBody(resp *Response, body string) {
	if resp.ContentType() == "" {
		resp.Header().Set("Content-Type", ContentTypeHTML)
	}
	resp.SetBody([]byte(body))
}
