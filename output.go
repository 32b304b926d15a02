package compositor

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
)

// Output errors.
var (
	// ErrInvalidDimensions is returned when an output has no usable size.
	ErrInvalidDimensions = errors.New("compositor: invalid dimensions")

	// ErrDuplicateOutput is returned when an output name is already in use.
	ErrDuplicateOutput = errors.New("compositor: output already exists")

	// ErrUnknownOutput is returned for outputs that are not part of this compositor.
	ErrUnknownOutput = errors.New("compositor: unknown output")
)

// RepaintState is the position of an output in the repaint cycle.
type RepaintState uint8

const (
	// StateIdle means no repaint is pending.
	StateIdle RepaintState = iota

	// StateRepaintRequested means damage was recorded or a repaint was forced.
	StateRepaintRequested

	// StateDispatchCustom means the installed custom renderer is running.
	StateDispatchCustom

	// StateDispatchBuiltin means the renderer's built-in paint path is running.
	StateDispatchBuiltin

	// StatePostRender means the frame is presented and the post-render hook runs.
	StatePostRender
)

// String returns the state name.
func (s RepaintState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRepaintRequested:
		return "RepaintRequested"
	case StateDispatchCustom:
		return "DispatchCustom"
	case StateDispatchBuiltin:
		return "DispatchBuiltin"
	case StatePostRender:
		return "PostRender"
	default:
		return fmt.Sprintf("RepaintState(%d)", uint8(s))
	}
}

// Borders is the space, in pixels, reserved around an output's usable area
// for decorations drawn by the compositor.
type Borders struct {
	Top, Bottom, Left, Right int
}

// OutputConfig describes an output to create.
type OutputConfig struct {
	// X, Y place the output's usable area in the global compositor space.
	X, Y int

	// Width and Height are the framebuffer size in pixels, borders included.
	// When zero and Window is set, the size is taken from the window.
	Width, Height int

	// Borders reserves decoration space inside the framebuffer.
	Borders Borders

	// Window is the host window backing this output, if any. Repaint
	// requests are forwarded to its RequestRedraw so the host wakes its
	// frame loop.
	Window gpucontext.WindowProvider
}

// Output is one display surface managed by the compositor.
//
// Output is NOT safe for concurrent use; it belongs to the compositor's
// event-dispatch goroutine.
type Output struct {
	c       *Compositor
	name    string
	pos     image.Point
	width   int
	height  int
	borders Borders
	window  gpucontext.WindowProvider

	state  RepaintState
	damage Region
	forced bool
	frames uint64

	rendererState any
	removed       bool
}

func newOutput(c *Compositor, name string, cfg OutputConfig) (*Output, error) {
	w, h := cfg.Width, cfg.Height
	if (w == 0 || h == 0) && cfg.Window != nil {
		ww, wh := cfg.Window.Size()
		scale := cfg.Window.ScaleFactor()
		w = int(float64(ww) * scale)
		h = int(float64(wh) * scale)
	}
	b := cfg.Borders
	if w <= 0 || h <= 0 || b.Top < 0 || b.Bottom < 0 || b.Left < 0 || b.Right < 0 ||
		b.Left+b.Right >= w || b.Top+b.Bottom >= h {
		return nil, fmt.Errorf("%w: output %q: %dx%d borders=%+v", ErrInvalidDimensions, name, w, h, b)
	}

	return &Output{
		c:       c,
		name:    name,
		pos:     image.Pt(cfg.X, cfg.Y),
		width:   w,
		height:  h,
		borders: b,
		window:  cfg.Window,
	}, nil
}

// Name returns the output name.
func (o *Output) Name() string { return o.name }

// Compositor returns the compositor owning the output.
func (o *Output) Compositor() *Compositor { return o.c }

// Width returns the framebuffer width in pixels.
func (o *Output) Width() int { return o.width }

// Height returns the framebuffer height in pixels.
func (o *Output) Height() int { return o.height }

// Size returns width and height as a convenience.
func (o *Output) Size() (width, height int) { return o.width, o.height }

// Borders returns the reserved decoration space.
func (o *Output) Borders() Borders { return o.borders }

// Window returns the host window backing the output, or nil.
func (o *Output) Window() gpucontext.WindowProvider { return o.window }

// FramebufferBounds returns the full framebuffer rectangle, borders included.
func (o *Output) FramebufferBounds() image.Rectangle {
	return image.Rect(0, 0, o.width, o.height)
}

// Viewport returns the drawable rectangle of the framebuffer: the
// framebuffer minus the borders.
func (o *Output) Viewport() image.Rectangle {
	return image.Rect(
		o.borders.Left,
		o.borders.Top,
		o.width-o.borders.Right,
		o.height-o.borders.Bottom,
	)
}

// Bounds returns the output's usable area in global compositor space.
func (o *Output) Bounds() image.Rectangle {
	vp := o.Viewport()
	return image.Rectangle{Min: o.pos, Max: o.pos.Add(vp.Size())}
}

// GlobalToLocal converts a global rectangle to framebuffer coordinates.
func (o *Output) GlobalToLocal(r image.Rectangle) image.Rectangle {
	return r.Sub(o.pos).Add(o.Viewport().Min)
}

// LocalToGlobal converts a framebuffer rectangle to global coordinates.
func (o *Output) LocalToGlobal(r image.Rectangle) image.Rectangle {
	return r.Sub(o.Viewport().Min).Add(o.pos)
}

// State returns the output's position in the repaint cycle.
func (o *Output) State() RepaintState { return o.state }

// FrameCount returns the number of completed repaint cycles.
func (o *Output) FrameCount() uint64 { return o.frames }

// PendingDamage returns a copy of the damage accumulated since the last repaint.
func (o *Output) PendingDamage() Region { return o.damage.Clone() }

// Pending reports whether the next frame opportunity will repaint the output.
func (o *Output) Pending() bool {
	return o.forced || !o.damage.Empty()
}

// Damage records a damaged framebuffer rectangle and requests a repaint.
// Rectangles outside the framebuffer and damage on a removed output are
// ignored.
func (o *Output) Damage(r image.Rectangle) {
	if o.removed {
		return
	}
	r = r.Intersect(o.FramebufferBounds())
	if r.Empty() {
		return
	}
	o.damage.Add(r)
	o.requestRepaint()
}

// DamageAll damages the whole framebuffer.
func (o *Output) DamageAll() {
	o.Damage(o.FramebufferBounds())
}

// ScheduleRepaint forces a repaint on the next frame opportunity even if
// no damage was recorded. Repeated calls before that frame collapse into
// one repaint.
func (o *Output) ScheduleRepaint() {
	if o.removed {
		return
	}
	o.forced = true
	o.requestRepaint()
}

func (o *Output) requestRepaint() {
	if o.removed {
		return
	}
	if o.state == StateIdle {
		o.state = StateRepaintRequested
	}
	if o.window != nil {
		o.window.RequestRedraw()
	}
}

// takeDamage hands the accumulated damage to a repaint cycle and clears the
// pending request.
func (o *Output) takeDamage() Region {
	d := o.damage.Clone()
	o.damage.Reset()
	o.forced = false
	return d
}

// RendererState returns the renderer's private per-output state.
func (o *Output) RendererState() any { return o.rendererState }

// SetRendererState stores the renderer's private per-output state.
func (o *Output) SetRendererState(v any) { o.rendererState = v }
