package compositor

import (
	"log/slog"

	"github.com/gogpu/compositor/plugin"
)

// Option configures a Compositor during creation.
//
// Example:
//
//	// Best registered backend
//	c, err := compositor.New()
//
//	// Explicit renderer (dependency injection)
//	c, err := compositor.New(compositor.WithRenderer(myRenderer))
type Option func(*options)

// options holds optional configuration for Compositor creation.
type options struct {
	renderer Renderer
	backend  string
	registry *plugin.Registry
	logger   *slog.Logger
}

// defaultOptions returns the default compositor options.
func defaultOptions() options {
	return options{
		renderer: nil, // Selected from the backend registry if nil
		logger:   nil, // Package logger if nil
	}
}

// WithRenderer sets the renderer providing the built-in paint path.
// It takes precedence over WithBackend.
func WithRenderer(r Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithBackend selects a registered renderer backend by name.
// An empty name selects the highest-priority registered backend.
//
// Example:
//
//	import _ "github.com/gogpu/compositor/backend/software"
//
//	c, err := compositor.New(compositor.WithBackend(compositor.BackendSoftware))
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithRegistry injects the capability registry the compositor will own.
// The compositor closes it on Close.
func WithRegistry(r *plugin.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the logger for this compositor instead of the package
// default returned by Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
