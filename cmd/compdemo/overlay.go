package main

import (
	"errors"
	"image"
	"image/color"
	"log"

	"golang.org/x/image/draw"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/renderer"
)

const stripeWidth = 16

var stripeColors = [2]color.RGBA{
	{R: 0x20, G: 0x20, B: 0x28, A: 0xff},
	{R: 0x40, G: 0xa0, B: 0x60, A: 0xff},
}

// overlay is an extension module: it finds the renderer extension table,
// paints the outputs it owns itself and keeps them animating.
type overlay struct {
	api     *renderer.API
	owned   map[*compositor.Output]bool
	painted int
	cycles  map[string]int
}

func newOverlay(c *compositor.Compositor, owned map[*compositor.Output]bool) (*overlay, error) {
	api, ok := renderer.Get(c)
	if !ok {
		return nil, errors.New("renderer extension not available")
	}
	ov := &overlay{api: api, owned: owned, cycles: make(map[string]int)}

	if err := api.SetCustomRenderer(ov.paint); err != nil {
		return nil, err
	}
	if err := api.SetPostRender(ov.postRender); err != nil {
		return nil, err
	}

	for _, s := range c.Surfaces() {
		f, b, err := api.SurfaceTextureFormat(s)
		if err != nil {
			log.Printf("surface %d: %v", s.ID(), err)
			continue
		}
		tex, _ := api.SurfaceTextures(s)
		log.Printf("surface %d: format=%v textures=%d external=%v", s.ID(), f, len(tex), b.External)
	}
	return ov, nil
}

// paint draws moving stripes over the viewport of owned outputs and
// declines the others so the built-in path paints them.
func (ov *overlay) paint(o *compositor.Output, _ compositor.Region) bool {
	if !ov.owned[o] {
		return false
	}
	h, err := ov.api.OutputSurface(o)
	if err != nil {
		return false
	}
	fb, ok := h.Surface().(*image.RGBA)
	if !ok {
		return false
	}
	vp, err := ov.api.OutputViewport(o)
	if err != nil {
		return false
	}

	shift := ov.cycles[o.Name()] * 4
	for x := vp.Min.X - 2*stripeWidth + shift%(2*stripeWidth); x < vp.Max.X; x += stripeWidth {
		i := ((x - vp.Min.X + 2*stripeWidth) / stripeWidth) % 2
		r := image.Rect(x, vp.Min.Y, x+stripeWidth, vp.Max.Y).Intersect(vp)
		draw.Draw(fb, r, image.NewUniform(stripeColors[i]), image.Point{}, draw.Src)
	}
	ov.painted++
	return true
}

func (ov *overlay) postRender(o *compositor.Output) {
	ov.cycles[o.Name()]++
	if ov.owned[o] {
		if err := ov.api.ScheduleRepaint(o); err != nil {
			log.Printf("schedule repaint %s: %v", o.Name(), err)
		}
	}
}
