// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// ErrUnsupportedFormat is returned for texture formats outside the closed
// enumeration.
var ErrUnsupportedFormat = errors.New("renderer: unsupported texture format")

// TextureFormat describes how a surface's content is held by the renderer.
//
// The enumeration is closed. Values outside it, including the zero value
// FormatUnknown, are not representable formats: callers must treat them as
// unsupported rather than guess.
type TextureFormat uint8

const (
	// FormatUnknown is the zero value; it is never a valid format.
	FormatUnknown TextureFormat = iota

	// FormatRGBA is one RGBA texture with alpha.
	FormatRGBA

	// FormatRGBX is one RGBA texture whose alpha is ignored.
	FormatRGBX

	// FormatEGL is an externally imported, hardware-opaque image.
	FormatEGL

	// FormatYUV_Y_UV is two textures: Y, and interleaved UV at half resolution.
	FormatYUV_Y_UV //nolint:revive // plane layout names

	// FormatYUV_Y_U_V is three textures: Y, U and V.
	FormatYUV_Y_U_V //nolint:revive // plane layout names

	// FormatYUV_Y_XUXV is two textures over packed YUYV data: Y sampled
	// from one, UV from the other.
	FormatYUV_Y_XUXV //nolint:revive // plane layout names

	// FormatSolid is a solid color with no texture.
	FormatSolid

	formatCount
)

var formatNames = [formatCount]string{
	FormatUnknown:    "unknown",
	FormatRGBA:       "rgba",
	FormatRGBX:       "rgbx",
	FormatEGL:        "egl",
	FormatYUV_Y_UV:   "y_uv",
	FormatYUV_Y_U_V:  "y_u_v",
	FormatYUV_Y_XUXV: "y_xuxv",
	FormatSolid:      "solid",
}

// Valid reports whether f is a member of the enumeration.
func (f TextureFormat) Valid() bool {
	return f > FormatUnknown && f < formatCount
}

// String returns the format name.
func (f TextureFormat) String() string {
	if f < formatCount {
		return formatNames[f]
	}
	return fmt.Sprintf("TextureFormat(%d)", uint8(f))
}

// ParseTextureFormat returns the format with the given name.
// Unknown names fail with ErrUnsupportedFormat.
func ParseTextureFormat(name string) (TextureFormat, error) {
	name = strings.ToLower(name)
	for f := FormatRGBA; f < formatCount; f++ {
		if formatNames[f] == name {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// IsYUV reports whether the format samples YUV planes.
func (f TextureFormat) IsYUV() bool {
	return f == FormatYUV_Y_UV || f == FormatYUV_Y_U_V || f == FormatYUV_Y_XUXV
}

// Planes returns the number of textures a surface in this format has.
func (f TextureFormat) Planes() int {
	return len(f.PlaneFormats())
}

// PlaneFormats returns the GPU format of each texture, in plane order.
// An imported image has one texture of undefined format; a solid color has none.
func (f TextureFormat) PlaneFormats() []gputypes.TextureFormat {
	switch f {
	case FormatRGBA, FormatRGBX:
		return []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}
	case FormatEGL:
		return []gputypes.TextureFormat{gputypes.TextureFormatUndefined}
	case FormatYUV_Y_UV:
		return []gputypes.TextureFormat{gputypes.TextureFormatR8Unorm, gputypes.TextureFormatRG8Unorm}
	case FormatYUV_Y_U_V:
		return []gputypes.TextureFormat{
			gputypes.TextureFormatR8Unorm,
			gputypes.TextureFormatR8Unorm,
			gputypes.TextureFormatR8Unorm,
		}
	case FormatYUV_Y_XUXV:
		return []gputypes.TextureFormat{gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatRGBA8Unorm}
	default:
		return nil
	}
}

// Binding is the implementation-defined target a surface's textures are
// bound to.
type Binding struct {
	// Dimension is the view dimension of the textures.
	Dimension gputypes.TextureViewDimension

	// External is true for images imported from outside the renderer,
	// which must be sampled through an external-image binding.
	External bool
}

// DefaultBinding returns the binding a renderer normally uses for f.
func DefaultBinding(f TextureFormat) Binding {
	switch {
	case f == FormatEGL:
		return Binding{Dimension: gputypes.TextureViewDimension2D, External: true}
	case f == FormatSolid || !f.Valid():
		return Binding{Dimension: gputypes.TextureViewDimensionUndefined}
	default:
		return Binding{Dimension: gputypes.TextureViewDimension2D}
	}
}
