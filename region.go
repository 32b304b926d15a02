package compositor

import "image"

// maxDamageRects is the threshold after which a region collapses into its
// bounding box. Past this point repainting the box is cheaper than walking
// many small rectangles.
const maxDamageRects = 16

// Region is a set of damaged rectangles in output framebuffer coordinates.
//
// Rectangles may overlap. The zero value is an empty region.
type Region struct {
	rects []image.Rectangle
}

// RegionOf returns a region covering the given rectangles.
func RegionOf(rects ...image.Rectangle) Region {
	var r Region
	for _, rect := range rects {
		r.Add(rect)
	}
	return r
}

// Add adds rect to the region. Empty rectangles and rectangles already
// covered by a single member are ignored.
func (r *Region) Add(rect image.Rectangle) {
	rect = rect.Canon()
	if rect.Empty() {
		return
	}
	for i, have := range r.rects {
		if rect.In(have) {
			return
		}
		if have.In(rect) {
			r.rects[i] = rect
			return
		}
	}

	r.rects = append(r.rects, rect)

	if len(r.rects) > maxDamageRects {
		b := r.Bounds()
		r.rects = append(r.rects[:0], b)
	}
}

// Union adds every rectangle of other to the region.
func (r *Region) Union(other Region) {
	for _, rect := range other.rects {
		r.Add(rect)
	}
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	return len(r.rects) == 0
}

// Rects returns the rectangles of the region.
// The returned slice must not be modified.
func (r Region) Rects() []image.Rectangle {
	return r.rects
}

// Bounds returns the smallest rectangle containing the region.
func (r Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, rect := range r.rects {
		b = b.Union(rect)
	}
	return b
}

// Clip returns the part of the region inside clip.
func (r Region) Clip(clip image.Rectangle) Region {
	var out Region
	for _, rect := range r.rects {
		out.Add(rect.Intersect(clip))
	}
	return out
}

// Translate returns the region moved by d.
func (r Region) Translate(d image.Point) Region {
	out := Region{rects: make([]image.Rectangle, len(r.rects))}
	for i, rect := range r.rects {
		out.rects[i] = rect.Add(d)
	}
	return out
}

// Overlaps reports whether any rectangle of the region intersects rect.
func (r Region) Overlaps(rect image.Rectangle) bool {
	for _, have := range r.rects {
		if have.Overlaps(rect) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the region.
func (r Region) Clone() Region {
	if len(r.rects) == 0 {
		return Region{}
	}
	return Region{rects: append([]image.Rectangle(nil), r.rects...)}
}

// Reset empties the region, keeping its storage.
func (r *Region) Reset() {
	r.rects = r.rects[:0]
}
