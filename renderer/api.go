// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/Masterminds/semver/v3"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/plugin"
)

// APIName is the registry name of the renderer extension table.
const APIName = "renderer_api_v1"

// Members of the renderer extension table, in declaration order.
const (
	FieldDisplay              = "display"
	FieldContext              = "context"
	FieldOutputSurface        = "output_surface"
	FieldSurfaceTextures      = "surface_textures"
	FieldSetCustomRenderer    = "set_custom_renderer"
	FieldSetPostRender        = "set_post_render"
	FieldScheduleRepaint      = "schedule_repaint"
	FieldOutputViewport       = "output_viewport"
	FieldSurfaceTextureFormat = "surface_texture_format"
)

// Schema is the current layout of the renderer extension table.
// New members are only ever appended.
var Schema = plugin.MustSchema("1.1.0",
	plugin.Func(FieldDisplay),
	plugin.Func(FieldContext),
	plugin.Func(FieldOutputSurface),
	plugin.Func(FieldSurfaceTextures),
	plugin.Func(FieldSetCustomRenderer),
	plugin.Func(FieldSetPostRender),
	plugin.Func(FieldScheduleRepaint),
	plugin.Func(FieldOutputViewport),
	plugin.Func(FieldSurfaceTextureFormat),
)

// SchemaV1_0 is the first layout of the table: context accessors and
// surface textures only.
var SchemaV1_0 = plugin.MustSchema("1.0.0", Schema.Fields[:4]...) //nolint:revive // version suffix

// Errors returned by API members.
var (
	// ErrNotExposed is returned by members outside the negotiated schema.
	ErrNotExposed = errors.New("renderer: member not exposed by negotiated api")

	// ErrForeignObject is returned for outputs or surfaces that belong to
	// another compositor, or were removed from this one.
	ErrForeignObject = errors.New("renderer: object does not belong to this compositor")
)

// Extension is implemented by renderer backends that publish the renderer
// extension table. Hook installation, forced repaints and viewports are
// provided by the compositor; the backend only answers queries about its
// own objects.
type Extension interface {
	// Display returns the renderer's display connection.
	Display() DisplayHandle

	// Context returns the renderer's rendering context.
	Context() ContextHandle

	// OutputSurface returns the drawing surface of o.
	OutputSurface(o *compositor.Output) OutputSurfaceHandle

	// SurfaceTextures returns the backing textures of s, valid until the
	// next repaint of s.
	SurfaceTextures(s *compositor.Surface) []TextureHandle

	// SurfaceTextureFormat returns the format of s and its binding target.
	SurfaceTextureFormat(s *compositor.Surface) (TextureFormat, Binding)
}

// table is the value registered under APIName: an Extension bound to the
// compositor that owns the hook slots.
type table struct {
	c   *compositor.Compositor
	ext Extension
}

// Install publishes ext as the renderer extension table of c.
// A second Install on the same compositor fails with
// plugin.ErrDuplicateRegistration.
func Install(c *compositor.Compositor, ext Extension) error {
	if ext == nil {
		return fmt.Errorf("%w: nil extension", plugin.ErrInvalidCapability)
	}
	return c.Registry().Register(APIName, &table{c: c, ext: ext}, Schema)
}

// Get looks up the renderer extension table of c using the current schema.
// A false result means no renderer extension is available; callers keep
// their built-in behavior.
func Get(c *compositor.Compositor) (*API, bool) {
	return GetSchema(c, Schema)
}

// GetSchema looks up the table for a caller built against schema s.
func GetSchema(c *compositor.Compositor, s plugin.Schema) (*API, bool) {
	capability, ok := c.Registry().Lookup(APIName, s)
	return newAPI(c, capability, ok)
}

// GetSize looks up the table for a caller that knows only the table's
// byte size.
func GetSize(c *compositor.Compositor, size int) (*API, bool) {
	capability, ok := c.Registry().LookupSize(APIName, size)
	return newAPI(c, capability, ok)
}

func newAPI(c *compositor.Compositor, capability plugin.Capability, ok bool) (*API, bool) {
	if !ok {
		// The registry already logged why.
		return nil, false
	}
	t, ok := plugin.As[*table](capability)
	if !ok {
		c.Logger().Warn("renderer: unexpected table type", "name", APIName, "type", fmt.Sprintf("%T", capability.Table()))
		return nil, false
	}
	return &API{capability: capability, t: t}, true
}

// API is the negotiated view of the renderer extension table.
// Members outside the negotiated schema return ErrNotExposed.
type API struct {
	capability plugin.Capability
	t          *table
}

// Version returns the negotiated schema version.
func (a *API) Version() *semver.Version { return a.capability.Schema().Version }

// Schema returns the negotiated schema.
func (a *API) Schema() plugin.Schema { return a.capability.Schema() }

// Exposes reports whether the named member is available.
func (a *API) Exposes(field string) bool { return a.capability.Exposes(field) }

func (a *API) check(field string) error {
	if !a.capability.Exposes(field) {
		return fmt.Errorf("%w: %s (negotiated %s)", ErrNotExposed, field, a.Version())
	}
	return nil
}

func (a *API) checkOutput(field string, o *compositor.Output) error {
	if err := a.check(field); err != nil {
		return err
	}
	if o == nil || o.Compositor() != a.t.c || a.t.c.Output(o.Name()) != o {
		return ErrForeignObject
	}
	return nil
}

func (a *API) checkSurface(field string, s *compositor.Surface) error {
	if err := a.check(field); err != nil {
		return err
	}
	if s == nil || s.Compositor() != a.t.c {
		return ErrForeignObject
	}
	return nil
}

// Display returns the renderer's display connection.
func (a *API) Display() (DisplayHandle, error) {
	if err := a.check(FieldDisplay); err != nil {
		return DisplayHandle{}, err
	}
	return a.t.ext.Display(), nil
}

// Context returns the renderer's rendering context.
func (a *API) Context() (ContextHandle, error) {
	if err := a.check(FieldContext); err != nil {
		return ContextHandle{}, err
	}
	return a.t.ext.Context(), nil
}

// OutputSurface returns the drawing surface of o.
func (a *API) OutputSurface(o *compositor.Output) (OutputSurfaceHandle, error) {
	if err := a.checkOutput(FieldOutputSurface, o); err != nil {
		return OutputSurfaceHandle{}, err
	}
	return a.t.ext.OutputSurface(o), nil
}

// SurfaceTextures returns the backing textures of s. The count is the
// length of the slice. The handles are valid until the next repaint of s.
func (a *API) SurfaceTextures(s *compositor.Surface) ([]TextureHandle, error) {
	if err := a.checkSurface(FieldSurfaceTextures, s); err != nil {
		return nil, err
	}
	return append([]TextureHandle(nil), a.t.ext.SurfaceTextures(s)...), nil
}

// SetCustomRenderer installs the compositor-wide custom renderer,
// replacing the previous one. Nil uninstalls it.
func (a *API) SetCustomRenderer(fn compositor.CustomRenderer) error {
	if err := a.check(FieldSetCustomRenderer); err != nil {
		return err
	}
	a.t.c.SetCustomRenderer(fn)
	return nil
}

// SetPostRender installs the compositor-wide post-render hook, replacing
// the previous one. Nil uninstalls it.
func (a *API) SetPostRender(fn compositor.PostRender) error {
	if err := a.check(FieldSetPostRender); err != nil {
		return err
	}
	a.t.c.SetPostRender(fn)
	return nil
}

// ScheduleRepaint forces a repaint of o on the next frame opportunity, even
// if the compositor recorded no damage for it.
func (a *API) ScheduleRepaint(o *compositor.Output) error {
	if err := a.checkOutput(FieldScheduleRepaint, o); err != nil {
		return err
	}
	o.ScheduleRepaint()
	return nil
}

// OutputViewport returns the drawable rectangle of o's framebuffer,
// excluding the borders reserved for decorations.
func (a *API) OutputViewport(o *compositor.Output) (image.Rectangle, error) {
	if err := a.checkOutput(FieldOutputViewport, o); err != nil {
		return image.Rectangle{}, err
	}
	return o.Viewport(), nil
}

// SurfaceTextureFormat returns the texture format of s and its binding.
// A backend reporting a format outside the enumeration yields
// ErrUnsupportedFormat.
func (a *API) SurfaceTextureFormat(s *compositor.Surface) (TextureFormat, Binding, error) {
	if err := a.checkSurface(FieldSurfaceTextureFormat, s); err != nil {
		return FormatUnknown, Binding{}, err
	}
	f, b := a.t.ext.SurfaceTextureFormat(s)
	if !f.Valid() {
		return FormatUnknown, Binding{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	return f, b, nil
}
