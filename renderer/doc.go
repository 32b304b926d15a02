// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package renderer defines the renderer extension table: the capability a
// rendering backend publishes so that external modules can reach into its
// state and take over or observe output repaints.
//
// # Publishing
//
// A backend implements Extension and calls Install from its Init. The
// table is registered under APIName with the current Schema.
//
// # Consuming
//
// Consumers call Get (or GetSchema with the schema they were built against,
// or GetSize with the table size they know). The returned API exposes only
// the members both sides agree on; members past that prefix return
// ErrNotExposed:
//
//	api, ok := renderer.Get(c)
//	if !ok {
//	    return // no renderer extension, keep the default behavior
//	}
//	_ = api.SetCustomRenderer(func(o *compositor.Output, damage compositor.Region) bool {
//	    // paint o directly
//	    return true
//	})
//
// # Handles
//
// DisplayHandle, ContextHandle, OutputSurfaceHandle and TextureHandle are
// distinct types over gpucontext tokens. They never own the resource and may
// change when the renderer is re-initialized. Texture handles are valid only
// until the next repaint of their surface.
//
// # Texture Formats
//
// TextureFormat is closed. A backend reporting a value outside it makes
// SurfaceTextureFormat fail with ErrUnsupportedFormat.
package renderer
