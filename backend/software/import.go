// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/renderer"
)

// surfaceState is the imported content of one surface.
type surfaceState struct {
	format   renderer.TextureFormat
	textures []*Texture

	// img is a drawable view sharing storage with textures where possible.
	img    image.Image
	opaque bool
}

func (st *surfaceState) handles() []renderer.TextureHandle {
	out := make([]renderer.TextureHandle, len(st.textures))
	for i, t := range st.textures {
		out[i] = renderer.NewTextureHandle(t)
	}
	return out
}

// importBuffer converts a committed buffer into textures and a drawable image.
func importBuffer(b compositor.Buffer) (*surfaceState, error) {
	switch b := b.(type) {
	case *compositor.PixelBuffer:
		return importPixels(b)
	case *compositor.SolidBuffer:
		return &surfaceState{
			format: renderer.FormatSolid,
			img:    image.NewUniform(b.Color),
			opaque: b.Color.A == 0xff,
		}, nil
	case *compositor.ExternalBuffer:
		return &surfaceState{
			format:   renderer.FormatEGL,
			textures: []*Texture{NewTexture(b.Width, b.Height, gputypes.TextureFormatUndefined)},
			img:      b.Image,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBuffer, b)
	}
}

func importPixels(b *compositor.PixelBuffer) (*surfaceState, error) {
	w, h := b.Width, b.Height
	cw, ch := (w+1)/2, (h+1)/2
	rect := image.Rect(0, 0, w, h)

	switch b.Format {
	case compositor.PixelABGR8888, compositor.PixelXBGR8888:
		t := NewTexture(w, h, gputypes.TextureFormatRGBA8Unorm)
		t.upload(b.Planes[0], b.Strides[0])
		st := &surfaceState{
			format:   renderer.FormatRGBA,
			textures: []*Texture{t},
			img:      &image.RGBA{Pix: t.data, Stride: t.Stride(), Rect: rect},
		}
		if b.Format == compositor.PixelXBGR8888 {
			for i := 3; i < len(t.data); i += 4 {
				t.data[i] = 0xff
			}
			st.format = renderer.FormatRGBX
			st.opaque = true
		}
		return st, nil

	case compositor.PixelNV12:
		y := NewTexture(w, h, gputypes.TextureFormatR8Unorm)
		uv := NewTexture(cw, ch, gputypes.TextureFormatRG8Unorm)
		y.upload(b.Planes[0], b.Strides[0])
		uv.upload(b.Planes[1], b.Strides[1])

		img := image.NewYCbCr(rect, image.YCbCrSubsampleRatio420)
		copy(img.Y, y.data)
		for i := range cw * ch {
			img.Cb[i] = uv.data[2*i]
			img.Cr[i] = uv.data[2*i+1]
		}
		return &surfaceState{
			format:   renderer.FormatYUV_Y_UV,
			textures: []*Texture{y, uv},
			img:      img,
			opaque:   true,
		}, nil

	case compositor.PixelYUV420:
		y := NewTexture(w, h, gputypes.TextureFormatR8Unorm)
		u := NewTexture(cw, ch, gputypes.TextureFormatR8Unorm)
		v := NewTexture(cw, ch, gputypes.TextureFormatR8Unorm)
		y.upload(b.Planes[0], b.Strides[0])
		u.upload(b.Planes[1], b.Strides[1])
		v.upload(b.Planes[2], b.Strides[2])
		return &surfaceState{
			format:   renderer.FormatYUV_Y_U_V,
			textures: []*Texture{y, u, v},
			img: &image.YCbCr{
				Y:              y.data,
				Cb:             u.data,
				Cr:             v.data,
				YStride:        w,
				CStride:        cw,
				SubsampleRatio: image.YCbCrSubsampleRatio420,
				Rect:           rect,
			},
			opaque: true,
		}, nil

	case compositor.PixelYUYV:
		// The packed data is sampled twice: as Y/X pairs for luma and as
		// Y0 U Y1 V quads for chroma.
		yx := NewTexture(w, h, gputypes.TextureFormatRG8Unorm)
		quads := NewTexture(cw, h, gputypes.TextureFormatRGBA8Unorm)
		yx.upload(b.Planes[0], b.Strides[0])
		quads.upload(b.Planes[0], b.Strides[0])

		img := image.NewYCbCr(rect, image.YCbCrSubsampleRatio422)
		for row := range h {
			q := quads.data[row*quads.Stride():]
			for i := range cw {
				img.Y[row*img.YStride+2*i] = q[4*i]
				if 2*i+1 < w {
					img.Y[row*img.YStride+2*i+1] = q[4*i+2]
				}
				img.Cb[row*img.CStride+i] = q[4*i+1]
				img.Cr[row*img.CStride+i] = q[4*i+3]
			}
		}
		return &surfaceState{
			format:   renderer.FormatYUV_Y_XUXV,
			textures: []*Texture{yx, quads},
			img:      img,
			opaque:   true,
		}, nil
	}
	return nil, fmt.Errorf("%w: pixel format %v", ErrUnsupportedBuffer, b.Format)
}
