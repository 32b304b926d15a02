// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Texture is a CPU-resident texture holding tightly packed rows.
// It implements gpucontext.Texture and gpucontext.TextureUpdater.
type Texture struct {
	width  int
	height int
	format gputypes.TextureFormat
	data   []byte
}

// NewTexture allocates a zeroed texture. Formats without a known texel
// size (imported images) get no storage.
func NewTexture(width, height int, format gputypes.TextureFormat) *Texture {
	t := &Texture{width: width, height: height, format: format}
	if bpp := bytesPerTexel(format); bpp > 0 {
		t.data = make([]byte, width*height*bpp)
	}
	return t
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Format returns the texel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Stride returns the bytes per row.
func (t *Texture) Stride() int { return t.width * bytesPerTexel(t.format) }

// Data returns the texel storage. It is owned by the texture.
func (t *Texture) Data() []byte { return t.data }

// UpdateData replaces the texture content. data must hold exactly
// width*height texels.
func (t *Texture) UpdateData(data []byte) error {
	if t.data == nil {
		return fmt.Errorf("software: texture format %v has no storage", t.format)
	}
	if len(data) != len(t.data) {
		return fmt.Errorf("software: texture data is %d bytes, want %d", len(data), len(t.data))
	}
	copy(t.data, data)
	return nil
}

// upload copies rows of a strided plane into the texture.
func (t *Texture) upload(src []byte, stride int) {
	row := t.Stride()
	for y := range t.height {
		copy(t.data[y*row:(y+1)*row], src[y*stride:y*stride+row])
	}
}

func bytesPerTexel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRG8Unorm:
		return 2
	case gputypes.TextureFormatRGBA8Unorm:
		return 4
	default:
		return 0
	}
}
