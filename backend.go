package compositor

import (
	"errors"
	"slices"

	"github.com/gogpu/gpucontext"
)

// Backend names.
const (
	// BackendGL is a GPU renderer backend.
	BackendGL = "gl"

	// BackendSoftware is the CPU reference renderer.
	BackendSoftware = "software"
)

// ErrUnknownBackend is returned when no renderer backend matches the request.
var ErrUnknownBackend = errors.New("compositor: renderer backend not available")

// Renderer provides the built-in paint path of a compositor.
//
// A renderer is bound to one compositor by Init. Renderers that publish
// capabilities (such as the renderer extension table) register them into
// the compositor's registry from Init.
//
// All methods are called from the compositor's event-dispatch goroutine.
type Renderer interface {
	// Name returns the renderer name (e.g., "software", "gl").
	Name() string

	// Init binds the renderer to c. Called once from New.
	Init(c *Compositor) error

	// OutputCreated prepares per-output state such as a drawing surface.
	OutputCreated(o *Output) error

	// OutputDestroyed releases per-output state.
	OutputDestroyed(o *Output)

	// SurfaceCommitted imports the surface's newly committed buffer.
	SurfaceCommitted(s *Surface) error

	// SurfaceDestroyed releases per-surface state.
	SurfaceDestroyed(s *Surface)

	// RepaintOutput paints damage on o and presents the frame.
	RepaintOutput(o *Output, damage Region) error

	// Close releases renderer resources.
	Close()
}

// BackendFactory creates a new renderer backend instance.
type BackendFactory func() Renderer

// backends holds registered renderer backends.
// Priority order: GPU renderer first, software renderer as fallback.
var backends = gpucontext.NewRegistry[Renderer](
	gpucontext.WithPriority(BackendGL, BackendSoftware),
)

// RegisterBackend registers a renderer backend factory under name.
// This is typically called from init() functions in backend packages:
//
//	func init() {
//	    compositor.RegisterBackend(compositor.BackendSoftware, func() compositor.Renderer {
//	        return software.New()
//	    })
//	}
//
// A backend registered under an existing name replaces it.
func RegisterBackend(name string, factory BackendFactory) {
	backends.Register(name, factory)
}

// UnregisterBackend removes a backend. This is useful for testing.
func UnregisterBackend(name string) {
	backends.Unregister(name)
}

// AvailableBackends returns the registered backend names in sorted order.
func AvailableBackends() []string {
	names := backends.Available()
	slices.Sort(names)
	return names
}

// newBackend creates the named backend, or the best available one for "".
func newBackend(name string) (Renderer, error) {
	var r Renderer
	if name == "" {
		r = backends.Best()
	} else {
		r = backends.Get(name)
	}
	if r == nil {
		return nil, ErrUnknownBackend
	}
	return r, nil
}
