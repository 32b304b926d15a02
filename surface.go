package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrSurfaceDestroyed is returned when a destroyed surface is used.
var ErrSurfaceDestroyed = errors.New("compositor: surface destroyed")

// ErrInvalidBuffer is returned when a committed buffer is malformed.
var ErrInvalidBuffer = errors.New("compositor: invalid buffer")

// PixelFormat is the memory layout of a client pixel buffer.
type PixelFormat uint8

const (
	// PixelABGR8888 is 32-bit RGBA with premultiplied alpha, stored little-endian:
	// bytes R, G, B, A in memory.
	PixelABGR8888 PixelFormat = iota + 1

	// PixelXBGR8888 is PixelABGR8888 with the alpha byte ignored.
	PixelXBGR8888

	// PixelNV12 is planar 4:2:0 YUV: a Y plane and an interleaved UV plane.
	PixelNV12

	// PixelYUV420 is planar 4:2:0 YUV with separate Y, U and V planes.
	PixelYUV420

	// PixelYUYV is packed 4:2:2 YUV: Y0 U Y1 V per pixel pair.
	PixelYUYV
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case PixelABGR8888:
		return "ABGR8888"
	case PixelXBGR8888:
		return "XBGR8888"
	case PixelNV12:
		return "NV12"
	case PixelYUV420:
		return "YUV420"
	case PixelYUYV:
		return "YUYV"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}

// Planes returns the number of memory planes of the format.
func (f PixelFormat) Planes() int {
	switch f {
	case PixelABGR8888, PixelXBGR8888, PixelYUYV:
		return 1
	case PixelNV12:
		return 2
	case PixelYUV420:
		return 3
	default:
		return 0
	}
}

// Buffer is content a client attaches to a surface.
// Implementations are PixelBuffer, SolidBuffer and ExternalBuffer.
type Buffer interface {
	// Size returns the buffer size in pixels.
	Size() (width, height int)

	buffer()
}

// PixelBuffer is a client buffer in shared memory.
type PixelBuffer struct {
	Format PixelFormat
	Width  int
	Height int

	// Planes holds the plane data; Strides the bytes per row of each plane.
	Planes  [][]byte
	Strides []int
}

// Size returns the buffer size in pixels.
func (b *PixelBuffer) Size() (int, int) { return b.Width, b.Height }

func (*PixelBuffer) buffer() {}

// Validate checks that every plane holds enough rows for the format.
func (b *PixelBuffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	n := b.Format.Planes()
	if n == 0 {
		return fmt.Errorf("%w: format %v", ErrInvalidBuffer, b.Format)
	}
	if len(b.Planes) != n || len(b.Strides) != n {
		return fmt.Errorf("%w: %v wants %d planes, got %d", ErrInvalidBuffer, b.Format, n, len(b.Planes))
	}
	for i := range n {
		w, h := b.planeSize(i)
		if b.Strides[i] < w || len(b.Planes[i]) < b.Strides[i]*(h-1)+w {
			return fmt.Errorf("%w: %v plane %d too small", ErrInvalidBuffer, b.Format, i)
		}
	}
	return nil
}

// planeSize returns the row width in bytes and the row count of plane i.
func (b *PixelBuffer) planeSize(i int) (rowBytes, rows int) {
	cw, ch := (b.Width+1)/2, (b.Height+1)/2
	switch b.Format {
	case PixelABGR8888, PixelXBGR8888:
		return b.Width * 4, b.Height
	case PixelYUYV:
		return cw * 4, b.Height
	case PixelNV12:
		if i == 0 {
			return b.Width, b.Height
		}
		return cw * 2, ch
	case PixelYUV420:
		if i == 0 {
			return b.Width, b.Height
		}
		return cw, ch
	}
	return 0, 0
}

// SolidBuffer is a single-color buffer with no backing memory.
type SolidBuffer struct {
	Color  color.RGBA
	Width  int
	Height int
}

// Size returns the buffer size in pixels.
func (b *SolidBuffer) Size() (int, int) { return b.Width, b.Height }

func (*SolidBuffer) buffer() {}

// ExternalBuffer is a buffer imported from another API, opaque to the
// compositor. Image may hold a CPU-readable view of it.
type ExternalBuffer struct {
	Width  int
	Height int
	Handle any
	Image  image.Image
}

// Size returns the buffer size in pixels.
func (b *ExternalBuffer) Size() (int, int) { return b.Width, b.Height }

func (*ExternalBuffer) buffer() {}

// Surface is a client drawable placed in global compositor space.
//
// Surface is NOT safe for concurrent use.
type Surface struct {
	c        *Compositor
	id       uint32
	pos      image.Point
	destSize image.Point

	pending Buffer
	current Buffer

	rendererState any
	destroyed     bool
}

// ID returns the surface identifier, unique within its compositor.
func (s *Surface) ID() uint32 { return s.id }

// Compositor returns the compositor owning the surface.
func (s *Surface) Compositor() *Compositor { return s.c }

// Buffer returns the committed buffer, or nil.
func (s *Surface) Buffer() Buffer { return s.current }

// Position returns the surface origin in global space.
func (s *Surface) Position() image.Point { return s.pos }

// Bounds returns the area the surface covers in global space.
// A surface without a committed buffer covers nothing.
func (s *Surface) Bounds() image.Rectangle {
	if s.current == nil {
		return image.Rectangle{Min: s.pos, Max: s.pos}
	}
	return image.Rectangle{Min: s.pos, Max: s.pos.Add(s.DestinationSize())}
}

// DestinationSize returns the size the surface is drawn at: the size set by
// SetDestinationSize, or the buffer size.
func (s *Surface) DestinationSize() image.Point {
	if s.destSize != (image.Point{}) {
		return s.destSize
	}
	if s.current == nil {
		return image.Point{}
	}
	w, h := s.current.Size()
	return image.Pt(w, h)
}

// SetDestinationSize scales the surface to w×h pixels. A zero size restores
// the buffer size.
func (s *Surface) SetDestinationSize(w, h int) {
	if s.destroyed {
		return
	}
	old := s.Bounds()
	s.destSize = image.Pt(max(w, 0), max(h, 0))
	s.c.damageGlobal(old)
	s.c.damageGlobal(s.Bounds())
}

// SetPosition moves the surface, damaging its old and new area.
func (s *Surface) SetPosition(x, y int) {
	if s.destroyed {
		return
	}
	old := s.Bounds()
	s.pos = image.Pt(x, y)
	s.c.damageGlobal(old)
	s.c.damageGlobal(s.Bounds())
}

// Attach sets the buffer applied by the next Commit. Nil detaches.
func (s *Surface) Attach(b Buffer) {
	s.pending = b
}

// Commit applies the attached buffer, lets the renderer import it and
// damages every output the surface covers.
func (s *Surface) Commit() error {
	if s.destroyed {
		return ErrSurfaceDestroyed
	}
	if pb, ok := s.pending.(*PixelBuffer); ok {
		if err := pb.Validate(); err != nil {
			return err
		}
	}

	old, prev := s.Bounds(), s.current
	s.current = s.pending
	if err := s.c.renderer.SurfaceCommitted(s); err != nil {
		s.current = prev
		return fmt.Errorf("compositor: surface %d import: %w", s.id, err)
	}
	s.c.damageGlobal(old)
	s.c.damageGlobal(s.Bounds())
	return nil
}

// Destroy removes the surface from the scene. Destroy is idempotent.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.c.removeSurface(s)
}

// RendererState returns the renderer's private per-surface state.
func (s *Surface) RendererState() any { return s.rendererState }

// SetRendererState stores the renderer's private per-surface state.
func (s *Surface) SetRendererState(v any) { s.rendererState = v }
