// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"image"
	"image/color"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"golang.org/x/image/draw"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/renderer"
)

// init registers the software renderer on package import.
func init() {
	compositor.RegisterBackend(compositor.BackendSoftware, func() compositor.Renderer {
		return New()
	})
}

// Package errors for the software renderer.
var (
	// ErrNotInitialized is returned when the renderer is used before Init.
	ErrNotInitialized = errors.New("software: renderer not initialized")

	// ErrUnsupportedBuffer is returned for buffers the renderer cannot import.
	ErrUnsupportedBuffer = errors.New("software: unsupported buffer")
)

// Renderer is the CPU reference renderer. Each output is backed by an
// *image.RGBA framebuffer; surfaces are composited bottom to top with
// golang.org/x/image/draw.
//
// Renderer publishes the renderer extension table when bound to a
// compositor. The output surface handle wraps the output's *image.RGBA.
type Renderer struct {
	provider gpucontext.DeviceProvider
	clear    color.RGBA
	border   color.RGBA
	scaler   draw.Scaler

	c      *compositor.Compositor
	logger *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDeviceProvider shares the host's GPU device. Its adapter and device
// become the display and context handles of the extension table.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(r *Renderer) {
		r.provider = p
	}
}

// WithClearColor sets the background painted under all surfaces.
func WithClearColor(c color.RGBA) Option {
	return func(r *Renderer) {
		r.clear = c
	}
}

// WithBorderColor sets the color of output borders.
func WithBorderColor(c color.RGBA) Option {
	return func(r *Renderer) {
		r.border = c
	}
}

// WithScaler sets the interpolator used for surfaces drawn at a size other
// than their buffer size. The default is draw.ApproxBiLinear.
func WithScaler(s draw.Scaler) Option {
	return func(r *Renderer) {
		r.scaler = s
	}
}

// New creates a software renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		clear:  color.RGBA{A: 0xff},
		border: color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff},
		scaler: draw.ApproxBiLinear,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the backend name.
func (r *Renderer) Name() string { return compositor.BackendSoftware }

// Init binds the renderer to c and installs the renderer extension table.
func (r *Renderer) Init(c *compositor.Compositor) error {
	r.c = c
	r.logger = c.Logger()
	if r.provider != nil {
		info := r.provider.AdapterInfo()
		r.logger.Info("software: sharing host device", "adapter", info.Name, "type", info.Type)
	}
	return renderer.Install(c, r)
}

// OutputCreated allocates the output's framebuffer and paints its borders.
func (r *Renderer) OutputCreated(o *compositor.Output) error {
	fb := image.NewRGBA(o.FramebufferBounds())
	draw.Draw(fb, fb.Bounds(), image.NewUniform(r.border), image.Point{}, draw.Src)
	o.SetRendererState(fb)
	return nil
}

// OutputDestroyed releases the output's framebuffer.
func (r *Renderer) OutputDestroyed(o *compositor.Output) {
	o.SetRendererState(nil)
}

// SurfaceCommitted imports the surface's current buffer.
func (r *Renderer) SurfaceCommitted(s *compositor.Surface) error {
	b := s.Buffer()
	if b == nil {
		s.SetRendererState(nil)
		return nil
	}
	st, err := importBuffer(b)
	if err != nil {
		return err
	}
	s.SetRendererState(st)
	return nil
}

// SurfaceDestroyed releases the surface's textures.
func (r *Renderer) SurfaceDestroyed(s *compositor.Surface) {
	s.SetRendererState(nil)
}

// RepaintOutput repaints the damaged part of o's viewport.
func (r *Renderer) RepaintOutput(o *compositor.Output, damage compositor.Region) error {
	fb := Framebuffer(o)
	if fb == nil {
		return ErrNotInitialized
	}
	bg := image.NewUniform(r.clear)
	for _, rect := range damage.Clip(o.Viewport()).Rects() {
		clip := fb.SubImage(rect).(*image.RGBA)
		draw.Draw(clip, rect, bg, image.Point{}, draw.Src)
		for _, s := range r.c.SurfacesIn(o.LocalToGlobal(rect)) {
			r.paintSurface(clip, o, s)
		}
	}
	return nil
}

func (r *Renderer) paintSurface(dst *image.RGBA, o *compositor.Output, s *compositor.Surface) {
	st, ok := s.RendererState().(*surfaceState)
	if !ok || st.img == nil {
		return
	}
	dr := o.GlobalToLocal(s.Bounds())
	op := draw.Over
	if st.opaque {
		op = draw.Src
	}

	switch {
	case st.format == renderer.FormatSolid:
		draw.Draw(dst, dr, st.img, image.Point{}, op)
	case st.img.Bounds().Size() == dr.Size():
		draw.Draw(dst, dr, st.img, st.img.Bounds().Min, op)
	default:
		r.scaler.Scale(dst, dr, st.img, st.img.Bounds(), op, nil)
	}
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	r.c = nil
}

// Framebuffer returns the framebuffer of an output painted by the software
// renderer, or nil.
func Framebuffer(o *compositor.Output) *image.RGBA {
	fb, _ := o.RendererState().(*image.RGBA)
	return fb
}

// Display returns the adapter of the shared device, or the renderer itself
// when running headless.
func (r *Renderer) Display() renderer.DisplayHandle {
	if r.provider != nil {
		return renderer.NewDisplayHandle(r.provider.Adapter())
	}
	return renderer.NewDisplayHandle(r)
}

// Context returns the shared device, or the renderer itself when running
// headless.
func (r *Renderer) Context() renderer.ContextHandle {
	if r.provider != nil {
		return renderer.NewContextHandle(r.provider.Device())
	}
	return renderer.NewContextHandle(r)
}

// OutputSurface returns a handle wrapping o's *image.RGBA framebuffer.
func (r *Renderer) OutputSurface(o *compositor.Output) renderer.OutputSurfaceHandle {
	if fb := Framebuffer(o); fb != nil {
		return renderer.NewOutputSurfaceHandle(fb)
	}
	return renderer.OutputSurfaceHandle{}
}

// SurfaceTextures returns the textures s was imported into.
func (r *Renderer) SurfaceTextures(s *compositor.Surface) []renderer.TextureHandle {
	st, ok := s.RendererState().(*surfaceState)
	if !ok {
		return nil
	}
	return st.handles()
}

// SurfaceTextureFormat returns the format s was imported as.
func (r *Renderer) SurfaceTextureFormat(s *compositor.Surface) (renderer.TextureFormat, renderer.Binding) {
	st, ok := s.RendererState().(*surfaceState)
	if !ok {
		return renderer.FormatUnknown, renderer.Binding{}
	}
	return st.format, renderer.DefaultBinding(st.format)
}

var (
	_ compositor.Renderer       = (*Renderer)(nil)
	_ renderer.Extension        = (*Renderer)(nil)
	_ gpucontext.Texture        = (*Texture)(nil)
	_ gpucontext.TextureUpdater = (*Texture)(nil)
)
