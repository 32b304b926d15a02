// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/plugin"
)

type fakeTexture struct{ w, h int }

func (t *fakeTexture) Width() int  { return t.w }
func (t *fakeTexture) Height() int { return t.h }

type fakeDevice struct{ name string }

// fakeBackend is a compositor.Renderer that publishes the extension table
// from Init and counts built-in repaints.
type fakeBackend struct {
	noInstall bool
	format    TextureFormat
	textures  []TextureHandle
	device    *fakeDevice
	repaints  int
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Init(c *compositor.Compositor) error {
	if b.noInstall {
		return nil
	}
	return Install(c, b)
}

func (b *fakeBackend) OutputCreated(*compositor.Output) error    { return nil }
func (b *fakeBackend) OutputDestroyed(*compositor.Output)        {}
func (b *fakeBackend) SurfaceCommitted(*compositor.Surface) error { return nil }
func (b *fakeBackend) SurfaceDestroyed(*compositor.Surface)      {}
func (b *fakeBackend) Close()                                    {}

func (b *fakeBackend) RepaintOutput(*compositor.Output, compositor.Region) error {
	b.repaints++
	return nil
}

func (b *fakeBackend) Display() DisplayHandle { return NewDisplayHandle("display") }
func (b *fakeBackend) Context() ContextHandle { return NewContextHandle(b.device) }

func (b *fakeBackend) OutputSurface(o *compositor.Output) OutputSurfaceHandle {
	return NewOutputSurfaceHandle(o.Name())
}

func (b *fakeBackend) SurfaceTextures(*compositor.Surface) []TextureHandle { return b.textures }

func (b *fakeBackend) SurfaceTextureFormat(*compositor.Surface) (TextureFormat, Binding) {
	return b.format, DefaultBinding(b.format)
}

func newTestCompositor(t *testing.T, b *fakeBackend) *compositor.Compositor {
	t.Helper()
	c, err := compositor.New(compositor.WithRenderer(b))
	if err != nil {
		t.Fatalf("compositor.New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func addOutput(t *testing.T, c *compositor.Compositor, name string) *compositor.Output {
	t.Helper()
	o, err := c.AddOutput(name, compositor.OutputConfig{
		Width:   800,
		Height:  600,
		Borders: compositor.Borders{Top: 32, Bottom: 8, Left: 8, Right: 8},
	})
	if err != nil {
		t.Fatalf("AddOutput(%q) error = %v", name, err)
	}
	return o
}

func TestGetWithoutExtension(t *testing.T) {
	c := newTestCompositor(t, &fakeBackend{noInstall: true})

	if api, ok := Get(c); ok || api != nil {
		t.Errorf("Get() = %v, %v, want nil, false", api, ok)
	}
	if _, ok := GetSize(c, Schema.Size()); ok {
		t.Error("GetSize() = present, want absent")
	}
}

func TestFailedGetLogsOnce(t *testing.T) {
	tests := []struct {
		name string
		b    *fakeBackend
		get  func(c *compositor.Compositor) bool
	}{
		{"not installed", &fakeBackend{noInstall: true}, func(c *compositor.Compositor) bool {
			_, ok := Get(c)
			return ok
		}},
		{"newer major", &fakeBackend{format: FormatRGBA}, func(c *compositor.Compositor) bool {
			_, ok := GetSchema(c, plugin.MustSchema("2.0.0", Schema.Fields...))
			return ok
		}},
		{"size too small", &fakeBackend{format: FormatRGBA}, func(c *compositor.Compositor) bool {
			_, ok := GetSize(c, 1)
			return ok
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			c, err := compositor.New(compositor.WithRenderer(tt.b), compositor.WithLogger(logger))
			if err != nil {
				t.Fatalf("compositor.New() error = %v", err)
			}
			defer c.Close()

			buf.Reset()
			if tt.get(c) {
				t.Fatal("lookup = present, want absent")
			}
			if n := strings.Count(buf.String(), "\n"); n != 1 {
				t.Errorf("failed lookup logged %d lines, want 1:\n%s", n, buf.String())
			}
		})
	}
}

func TestInstallTwiceFails(t *testing.T) {
	b := &fakeBackend{format: FormatRGBA}
	c := newTestCompositor(t, b)

	err := Install(c, b)
	if !errors.Is(err, plugin.ErrDuplicateRegistration) {
		t.Errorf("second Install() error = %v, want ErrDuplicateRegistration", err)
	}
	if err := Install(c, nil); !errors.Is(err, plugin.ErrInvalidCapability) {
		t.Errorf("Install(nil) error = %v, want ErrInvalidCapability", err)
	}
}

func TestGetFullSchema(t *testing.T) {
	b := &fakeBackend{format: FormatRGBA, device: &fakeDevice{name: "gpu0"}}
	c := newTestCompositor(t, b)
	o := addOutput(t, c, "out0")

	api, ok := Get(c)
	if !ok {
		t.Fatal("Get() = absent, want present")
	}
	if got := api.Version().String(); got != "1.1.0" {
		t.Errorf("Version() = %s, want 1.1.0", got)
	}
	for _, f := range Schema.Fields {
		if !api.Exposes(f.Name) {
			t.Errorf("Exposes(%q) = false", f.Name)
		}
	}

	ctx, err := api.Context()
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if d, _ := ctx.Device().(*fakeDevice); d != b.device {
		t.Errorf("Context().Device() = %v, want backend device", ctx.Device())
	}
	disp, err := api.Display()
	if err != nil || disp.IsNil() {
		t.Errorf("Display() = %v, %v", disp, err)
	}

	surf, err := api.OutputSurface(o)
	if err != nil {
		t.Fatalf("OutputSurface() error = %v", err)
	}
	if surf.Surface() != "out0" {
		t.Errorf("OutputSurface() = %v, want out0", surf.Surface())
	}

	vp, err := api.OutputViewport(o)
	if err != nil {
		t.Fatalf("OutputViewport() error = %v", err)
	}
	if want := image.Rect(8, 32, 792, 592); vp != want {
		t.Errorf("OutputViewport() = %v, want %v", vp, want)
	}
}

func TestGetOlderSchemaHidesNewMembers(t *testing.T) {
	c := newTestCompositor(t, &fakeBackend{format: FormatRGBA})
	o := addOutput(t, c, "out0")

	api, ok := GetSchema(c, SchemaV1_0)
	if !ok {
		t.Fatal("GetSchema(v1.0) = absent, want present")
	}
	if got := api.Version().String(); got != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", got)
	}
	if api.Schema().Len() != 4 {
		t.Errorf("negotiated fields = %d, want 4", api.Schema().Len())
	}

	if _, err := api.SurfaceTextures(mustSurface(t, c)); err != nil {
		t.Errorf("SurfaceTextures() error = %v", err)
	}
	if err := api.ScheduleRepaint(o); !errors.Is(err, ErrNotExposed) {
		t.Errorf("ScheduleRepaint() error = %v, want ErrNotExposed", err)
	}
	if err := api.SetCustomRenderer(nil); !errors.Is(err, ErrNotExposed) {
		t.Errorf("SetCustomRenderer() error = %v, want ErrNotExposed", err)
	}
	if c.HasCustomRenderer() {
		t.Error("custom renderer installed through unexposed member")
	}
}

func TestGetSize(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		ok     bool
		fields int
	}{
		{"zero", 0, false, 0},
		{"less than one member", plugin.PointerSize - 1, false, 0},
		{"v1.0 table", SchemaV1_0.Size(), true, 4},
		{"partial member", SchemaV1_0.Size() + 4, true, 4},
		{"current table", Schema.Size(), true, Schema.Len()},
		{"larger than registered", Schema.Size() * 2, true, Schema.Len()},
	}

	c := newTestCompositor(t, &fakeBackend{format: FormatRGBA})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, ok := GetSize(c, tt.size)
			if ok != tt.ok {
				t.Fatalf("GetSize(%d) ok = %v, want %v", tt.size, ok, tt.ok)
			}
			if ok && api.Schema().Len() != tt.fields {
				t.Errorf("GetSize(%d) fields = %d, want %d", tt.size, api.Schema().Len(), tt.fields)
			}
		})
	}
}

func TestHooksThroughAPI(t *testing.T) {
	b := &fakeBackend{format: FormatRGBA}
	c := newTestCompositor(t, b)
	o := addOutput(t, c, "out0")

	api, ok := Get(c)
	if !ok {
		t.Fatal("Get() = absent")
	}

	var custom, post int
	if err := api.SetCustomRenderer(func(*compositor.Output, compositor.Region) bool {
		custom++
		return true
	}); err != nil {
		t.Fatalf("SetCustomRenderer() error = %v", err)
	}
	if err := api.SetPostRender(func(*compositor.Output) { post++ }); err != nil {
		t.Fatalf("SetPostRender() error = %v", err)
	}

	for range 3 {
		if err := api.ScheduleRepaint(o); err != nil {
			t.Fatalf("ScheduleRepaint() error = %v", err)
		}
		if _, err := c.Frame(t.Context()); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}

	if custom != 3 || post != 3 || b.repaints != 0 {
		t.Errorf("custom=%d post=%d builtin=%d, want 3, 3, 0", custom, post, b.repaints)
	}
}

func TestForeignObjects(t *testing.T) {
	c1 := newTestCompositor(t, &fakeBackend{format: FormatRGBA})
	c2 := newTestCompositor(t, &fakeBackend{format: FormatRGBA})
	foreign := addOutput(t, c2, "out0")
	foreignSurface := mustSurface(t, c2)

	api, _ := Get(c1)
	if err := api.ScheduleRepaint(foreign); !errors.Is(err, ErrForeignObject) {
		t.Errorf("ScheduleRepaint(foreign) error = %v, want ErrForeignObject", err)
	}
	if _, err := api.OutputViewport(nil); !errors.Is(err, ErrForeignObject) {
		t.Errorf("OutputViewport(nil) error = %v, want ErrForeignObject", err)
	}
	if _, err := api.SurfaceTextures(foreignSurface); !errors.Is(err, ErrForeignObject) {
		t.Errorf("SurfaceTextures(foreign) error = %v, want ErrForeignObject", err)
	}

	removed := addOutput(t, c1, "gone")
	if err := c1.RemoveOutput(removed); err != nil {
		t.Fatalf("RemoveOutput() error = %v", err)
	}
	if err := api.ScheduleRepaint(removed); !errors.Is(err, ErrForeignObject) {
		t.Errorf("ScheduleRepaint(removed) error = %v, want ErrForeignObject", err)
	}
}

func TestSurfaceTexturesCopied(t *testing.T) {
	tex := []TextureHandle{
		NewTextureHandle(&fakeTexture{w: 64, h: 32}),
		NewTextureHandle(&fakeTexture{w: 32, h: 16}),
	}
	c := newTestCompositor(t, &fakeBackend{format: FormatYUV_Y_UV, textures: tex})
	api, _ := Get(c)

	got, err := api.SurfaceTextures(mustSurface(t, c))
	if err != nil {
		t.Fatalf("SurfaceTextures() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("SurfaceTextures() count = %d, want 2", len(got))
	}
	got[0] = TextureHandle{}
	if tex[0].IsNil() {
		t.Error("caller mutation reached the backend's texture list")
	}
	if w, h := got[1].Size(); w != 32 || h != 16 {
		t.Errorf("plane 1 size = %dx%d, want 32x16", w, h)
	}
}

func TestSurfaceTextureFormatFailsClosed(t *testing.T) {
	tests := []struct {
		format  TextureFormat
		wantErr bool
	}{
		{FormatRGBA, false},
		{FormatEGL, false},
		{FormatYUV_Y_XUXV, false},
		{FormatSolid, false},
		{FormatUnknown, true},
		{TextureFormat(200), true},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			c := newTestCompositor(t, &fakeBackend{format: tt.format})
			api, _ := Get(c)

			f, bind, err := api.SurfaceTextureFormat(mustSurface(t, c))
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("error = %v, want ErrUnsupportedFormat", err)
				}
				if f != FormatUnknown {
					t.Errorf("format = %v, want unknown", f)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if f != tt.format || bind != DefaultBinding(tt.format) {
				t.Errorf("got %v %+v, want %v %+v", f, bind, tt.format, DefaultBinding(tt.format))
			}
		})
	}
}

func mustSurface(t *testing.T, c *compositor.Compositor) *compositor.Surface {
	t.Helper()
	s, err := c.CreateSurface()
	if err != nil {
		t.Fatalf("CreateSurface() error = %v", err)
	}
	return s
}
