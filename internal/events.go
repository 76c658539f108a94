package internal

import (
	"context"

	"github.com/dmitrymomot/relay/pkg/eventbus"
)

// Topics fired by the App. The App is always the event sender.
const (
	// TopicStartupInstalled fires inside New once modules are installed and routes built.
	TopicStartupInstalled = "startup_installed"

	// TopicPrepareDefaultEnv fires once with the default template Vars as Arg(0).
	TopicPrepareDefaultEnv = "prepare_default_env"

	// TopicTemplateTagHandlers is read once with GetOnce; the result is handed
	// to renderers implementing TagAware.
	TopicTemplateTagHandlers = "get_template_tag_handlers"

	// TopicStartup is the last step of New.
	TopicStartup = "startup"

	// TopicSetLocalEnv fires per request with the Context as Arg(0).
	TopicSetLocalEnv = "set_local_env"

	// TopicPrepareTemplateEnv fires per render with the template Vars as Arg(0).
	TopicPrepareTemplateEnv = "prepare_template_env"

	// TopicBeforeRenderTemplate fires per render with name and Vars.
	TopicBeforeRenderTemplate = "before_render_template"

	// TopicAfterRenderTemplate fires per render with name, Vars and *string output.
	TopicAfterRenderTemplate = "after_render_template"
)

// fire calls a topic with the App as sender.
func (a *App) fire(ctx context.Context, topic string, args ...any) error {
	return a.bus.Call(ctx, eventbus.Event{Sender: a, Topic: topic, Args: args})
}

// startup runs the build-time topics in order.
func (a *App) startup(ctx context.Context) error {
	if err := a.fire(ctx, TopicStartupInstalled); err != nil {
		return err
	}

	env := Vars{}
	if err := a.fire(ctx, TopicPrepareDefaultEnv, env); err != nil {
		return err
	}
	a.defaultEnv = env

	tags, err := a.bus.GetOnce(ctx, eventbus.Event{Sender: a, Topic: TopicTemplateTagHandlers})
	if err != nil {
		return err
	}
	if ta, ok := a.renderer.(TagAware); ok {
		switch m := tags.(type) {
		case map[string]any:
			ta.SetTagHandlers(m)
		case Vars:
			ta.SetTagHandlers(m)
		}
	}

	return a.fire(ctx, TopicStartup)
}
