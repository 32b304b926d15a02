// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides the CPU reference renderer for the compositor.
//
// Importing the package registers the backend under
// compositor.BackendSoftware:
//
//	import _ "github.com/gogpu/compositor/backend/software"
//
// Client buffers are imported into Texture values laid out the way a GPU
// renderer would sample them (one RGBA texture, or two or three YUV
// planes), and composited into a per-output *image.RGBA with
// golang.org/x/image/draw. Framebuffer returns that image; the renderer
// extension's OutputSurface handle wraps the same pointer.
package software
