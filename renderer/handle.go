// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import "github.com/gogpu/gpucontext"

// DisplayHandle is an opaque handle to the renderer's display connection
// (the platform object GPU contexts are created from).
//
// Handles of different resource classes are distinct types, so a context
// can never be passed where a texture is expected. The zero value holds no
// resource. Handles are non-owning and may change when the renderer is
// re-initialized.
type DisplayHandle struct {
	adapter gpucontext.Adapter
}

// NewDisplayHandle wraps a display or adapter object.
func NewDisplayHandle(a gpucontext.Adapter) DisplayHandle {
	return DisplayHandle{adapter: a}
}

// Adapter returns the wrapped object. Consumers type-assert to the concrete
// type of the backend they expect.
func (h DisplayHandle) Adapter() gpucontext.Adapter { return h.adapter }

// IsNil reports whether the handle holds no resource.
func (h DisplayHandle) IsNil() bool { return h.adapter == nil }

// ContextHandle is an opaque handle to the renderer's rendering context.
type ContextHandle struct {
	device gpucontext.Device
}

// NewContextHandle wraps a rendering context or device.
func NewContextHandle(d gpucontext.Device) ContextHandle {
	return ContextHandle{device: d}
}

// Device returns the wrapped object.
func (h ContextHandle) Device() gpucontext.Device { return h.device }

// IsNil reports whether the handle holds no resource.
func (h ContextHandle) IsNil() bool { return h.device == nil }

// OutputSurfaceHandle is an opaque handle to the drawing surface of one output.
type OutputSurfaceHandle struct {
	surface gpucontext.Surface
}

// NewOutputSurfaceHandle wraps an output drawing surface.
func NewOutputSurfaceHandle(s gpucontext.Surface) OutputSurfaceHandle {
	return OutputSurfaceHandle{surface: s}
}

// Surface returns the wrapped object.
func (h OutputSurfaceHandle) Surface() gpucontext.Surface { return h.surface }

// IsNil reports whether the handle holds no resource.
func (h OutputSurfaceHandle) IsNil() bool { return h.surface == nil }

// TextureHandle is an opaque handle to one backing texture of a surface.
// It is valid until the next repaint of that surface.
type TextureHandle struct {
	tex gpucontext.Texture
}

// NewTextureHandle wraps a texture.
func NewTextureHandle(t gpucontext.Texture) TextureHandle {
	return TextureHandle{tex: t}
}

// Texture returns the wrapped texture.
func (h TextureHandle) Texture() gpucontext.Texture { return h.tex }

// IsNil reports whether the handle holds no resource.
func (h TextureHandle) IsNil() bool { return h.tex == nil }

// Size returns the texture size in pixels, or 0, 0 for a nil handle.
func (h TextureHandle) Size() (width, height int) {
	if h.tex == nil {
		return 0, 0
	}
	return h.tex.Width(), h.tex.Height()
}
