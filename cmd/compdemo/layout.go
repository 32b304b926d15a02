package main

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/compositor"
)

// defaultLayout is used when no -config file is given.
const defaultLayout = `
backend: software
frames: 3
outputs:
  - name: left
    width: 320
    height: 240
    borders: {top: 24, bottom: 4, left: 4, right: 4}
  - name: right
    x: 312
    width: 320
    height: 240
    borders: {top: 24, bottom: 4, left: 4, right: 4}
    override: true
surfaces:
  - color: "#3050a0"
    x: 16
    y: 16
    width: 200
    height: 120
  - color: "#e0a020c0"
    x: 260
    y: 80
    width: 140
    height: 100
`

// Layout describes the demo scene.
type Layout struct {
	Backend  string          `yaml:"backend"`
	Frames   int             `yaml:"frames"`
	Outputs  []OutputLayout  `yaml:"outputs"`
	Surfaces []SurfaceLayout `yaml:"surfaces"`
}

// OutputLayout describes one output.
type OutputLayout struct {
	Name    string  `yaml:"name"`
	X       int     `yaml:"x"`
	Y       int     `yaml:"y"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	Borders Borders `yaml:"borders"`

	// Override hands the output to the demo's custom renderer.
	Override bool `yaml:"override"`
}

// Borders mirrors compositor.Borders with YAML keys.
type Borders struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// SurfaceLayout describes one solid-color surface.
type SurfaceLayout struct {
	Color  string `yaml:"color"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// loadLayout reads a layout file, or the built-in layout for "".
func loadLayout(path string) (*Layout, error) {
	data := []byte(defaultLayout)
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	return parseLayout(data)
}

func parseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if len(l.Outputs) == 0 {
		return nil, errors.New("layout: no outputs")
	}
	if l.Frames <= 0 {
		l.Frames = 1
	}
	return &l, nil
}

func (o OutputLayout) config() compositor.OutputConfig {
	return compositor.OutputConfig{
		X:      o.X,
		Y:      o.Y,
		Width:  o.Width,
		Height: o.Height,
		Borders: compositor.Borders{
			Top:    o.Borders.Top,
			Bottom: o.Borders.Bottom,
			Left:   o.Borders.Left,
			Right:  o.Borders.Right,
		},
	}
}

// parseColor parses "#rrggbb" or "#rrggbbaa" into a premultiplied color.
func parseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("layout: bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("layout: bad color %q: %w", s, err)
	}
	nrgba := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(nrgba).(color.RGBA), nil
}
