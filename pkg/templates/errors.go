package templates

import "errors"

// Sentinel errors for template rendering.
var (
	// ErrTemplateNotFound is returned when no template is registered under the name.
	ErrTemplateNotFound = errors.New("templates: template not found")

	// ErrRenderFailed is returned when a component fails to render.
	ErrRenderFailed = errors.New("templates: render failed")
)
