package internal

// Module groups related views under one name and declares their routes.
// The module name prefixes every endpoint and derived template name.
//
// Example:
//
//	type Blog struct {
//	    repo *repository.Queries
//	}
//
//	func (b *Blog) Name() string { return "blog" }
//
//	func (b *Blog) Routes(r relay.Router) {
//	    r.GET("/posts", b.index)
//	    r.GET("/posts/<int:id>", b.show)
//	}
type Module interface {
	Name() string
	Routes(r Router)
}

// ViewFunc handles a matched route.
// Path variables are available through c.Param.
type ViewFunc func(c Context) (Result, error)

// BeginHook is implemented by modules that run code before each of their views.
// A non-nil result skips the view.
type BeginHook interface {
	Begin(c Context) (Result, error)
}

// EndHook is implemented by modules that run code after each of their views.
// A non-nil result replaces the view's result.
type EndHook interface {
	End(c Context, res Result) (Result, error)
}
