package compositor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/gogpu/compositor/plugin"
)

// ErrClosed is returned when operations are attempted on a closed compositor.
var ErrClosed = errors.New("compositor: closed")

// Compositor is one compositor session. It owns the capability registry,
// the outputs and surfaces, and the repaint hooks installed by extensions.
//
// Compositor is NOT safe for concurrent use. Every method, every hook and
// every renderer callback runs on the goroutine that drives Frame.
type Compositor struct {
	registry *plugin.Registry
	renderer Renderer
	logger   *slog.Logger

	outputs  []*Output
	surfaces []*Surface // bottom to top
	nextID   uint32

	custom CustomRenderer
	post   PostRender

	closed bool
}

// New creates a compositor and binds its renderer.
//
// The renderer comes from WithRenderer, or else from the backend registry
// (WithBackend, or the best registered backend). The renderer's Init runs
// last, so it can publish capabilities into the new registry.
func New(opts ...Option) (*Compositor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = Logger()
	}
	reg := o.registry
	if reg == nil {
		reg = plugin.New(plugin.WithLogger(logger))
	}

	r := o.renderer
	if r == nil {
		var err error
		if r, err = newBackend(o.backend); err != nil {
			return nil, fmt.Errorf("%w: %q (registered: %v)", err, o.backend, AvailableBackends())
		}
	}

	c := &Compositor{
		registry: reg,
		renderer: r,
		logger:   logger,
	}
	if err := r.Init(c); err != nil {
		reg.Close()
		return nil, fmt.Errorf("compositor: renderer %q init: %w", r.Name(), err)
	}
	logger.Info("compositor: renderer selected", "renderer", r.Name())
	return c, nil
}

// Registry returns the capability registry owned by the compositor.
func (c *Compositor) Registry() *plugin.Registry { return c.registry }

// Renderer returns the renderer providing the built-in paint path.
func (c *Compositor) Renderer() Renderer { return c.renderer }

// AddOutput creates an output and lets the renderer prepare it.
// A new output starts with full damage so its first frame is painted.
func (c *Compositor) AddOutput(name string, cfg OutputConfig) (*Output, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if c.Output(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateOutput, name)
	}
	o, err := newOutput(c, name, cfg)
	if err != nil {
		return nil, err
	}
	if err := c.renderer.OutputCreated(o); err != nil {
		return nil, fmt.Errorf("compositor: output %q: %w", name, err)
	}
	c.outputs = append(c.outputs, o)
	o.DamageAll()
	c.logger.Debug("compositor: output added", "output", name, "width", o.width, "height", o.height)
	return o, nil
}

// RemoveOutput destroys an output.
func (c *Compositor) RemoveOutput(o *Output) error {
	i := slices.Index(c.outputs, o)
	if i < 0 {
		return ErrUnknownOutput
	}
	c.outputs = slices.Delete(c.outputs, i, i+1)
	c.renderer.OutputDestroyed(o)
	o.removed = true
	o.takeDamage()
	o.state = StateIdle
	return nil
}

// Output returns the output with the given name, or nil.
func (c *Compositor) Output(name string) *Output {
	for _, o := range c.outputs {
		if o.name == name {
			return o
		}
	}
	return nil
}

// Outputs returns the outputs in creation order.
func (c *Compositor) Outputs() []*Output {
	return slices.Clone(c.outputs)
}

// CreateSurface creates an empty surface at the top of the stack.
func (c *Compositor) CreateSurface() (*Surface, error) {
	if c.closed {
		return nil, ErrClosed
	}
	c.nextID++
	s := &Surface{c: c, id: c.nextID}
	c.surfaces = append(c.surfaces, s)
	return s, nil
}

// Surfaces returns the surfaces from bottom to top.
func (c *Compositor) Surfaces() []*Surface {
	return slices.Clone(c.surfaces)
}

// SurfacesIn returns the surfaces with content overlapping the global
// rectangle r, from bottom to top.
func (c *Compositor) SurfacesIn(r image.Rectangle) []*Surface {
	var out []*Surface
	for _, s := range c.surfaces {
		if s.current != nil && s.Bounds().Overlaps(r) {
			out = append(out, s)
		}
	}
	return out
}

// RaiseSurface moves s to the top of the stack.
func (c *Compositor) RaiseSurface(s *Surface) {
	i := slices.Index(c.surfaces, s)
	if i < 0 || i == len(c.surfaces)-1 {
		return
	}
	c.surfaces = append(slices.Delete(c.surfaces, i, i+1), s)
	c.damageGlobal(s.Bounds())
}

func (c *Compositor) removeSurface(s *Surface) {
	if i := slices.Index(c.surfaces, s); i >= 0 {
		c.surfaces = slices.Delete(c.surfaces, i, i+1)
	}
	c.damageGlobal(s.Bounds())
	c.renderer.SurfaceDestroyed(s)
	s.destroyed = true
	s.current = nil
	s.pending = nil
}

// damageGlobal damages every output overlapping the global rectangle r.
func (c *Compositor) damageGlobal(r image.Rectangle) {
	if r.Empty() {
		return
	}
	for _, o := range c.outputs {
		if part := r.Intersect(o.Bounds()); !part.Empty() {
			o.Damage(o.GlobalToLocal(part))
		}
	}
}

// Close destroys all surfaces and outputs, closes the renderer and tears
// down the capability registry. Close is idempotent.
func (c *Compositor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	for _, s := range slices.Clone(c.surfaces) {
		s.Destroy()
	}
	for _, o := range slices.Clone(c.outputs) {
		_ = c.RemoveOutput(o)
	}
	c.custom = nil
	c.post = nil
	c.renderer.Close()
	c.registry.Close()
	return nil
}

// Closed reports whether Close has been called.
func (c *Compositor) Closed() bool { return c.closed }
