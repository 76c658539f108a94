// Package templates provides a named template registry backed by templ components.
//
// The registry is the template collaborator of a relay application: views return
// variables and the dispatcher renders them through [Registry.Render] using a
// template name derived from the endpoint ("blog/show.html").
//
//	tpl := templates.New()
//	tpl.Register("blog/show.html", func(vars templates.Vars) templ.Component {
//	    return views.ShowPost(templates.Var[*Post](vars, "post"))
//	})
//	tpl.Static("404.html", "<h1>Not Found</h1>")
//
// Components can reach the tag handlers published on the
// get_template_tag_handlers topic through [TagHandlers] and [Tag]. Static
// templates apply them inline with {{tag key}}. [DefaultTags] ships markdown,
// sanitize, striptags and title.
package templates
