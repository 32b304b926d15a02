package compositor

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/compositor/plugin"
)

// mockRenderer records the calls the compositor makes into its renderer.
type mockRenderer struct {
	initErr    error
	paintErr   error
	importErr  error
	install    func(c *Compositor) error
	c          *Compositor
	outputs    int
	destroyed  int
	commits    int
	surfGone   int
	repaints   int
	lastDamage Region
	closed     int
}

func (m *mockRenderer) Name() string { return "mock" }

func (m *mockRenderer) Init(c *Compositor) error {
	m.c = c
	if m.initErr != nil {
		return m.initErr
	}
	if m.install != nil {
		return m.install(c)
	}
	return nil
}

func (m *mockRenderer) OutputCreated(*Output) error { m.outputs++; return nil }
func (m *mockRenderer) OutputDestroyed(*Output)     { m.destroyed++ }
func (m *mockRenderer) SurfaceDestroyed(*Surface)   { m.surfGone++ }
func (m *mockRenderer) Close()                      { m.closed++ }

func (m *mockRenderer) SurfaceCommitted(*Surface) error {
	m.commits++
	return m.importErr
}

func (m *mockRenderer) RepaintOutput(_ *Output, damage Region) error {
	m.repaints++
	m.lastDamage = damage
	return m.paintErr
}

// countingWindow is a gpucontext.WindowProvider counting redraw requests.
type countingWindow struct {
	w, h    int
	scale   float64
	redraws int
}

func (w *countingWindow) Size() (int, int)     { return w.w, w.h }
func (w *countingWindow) ScaleFactor() float64 { return w.scale }
func (w *countingWindow) RequestRedraw()       { w.redraws++ }

func mustSchema(t *testing.T) plugin.Schema {
	t.Helper()
	s, err := plugin.NewSchema("1.0.0", plugin.Func("op"))
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return s
}

func newTestCompositor(t *testing.T) (*Compositor, *mockRenderer) {
	t.Helper()
	m := &mockRenderer{}
	c, err := New(WithRenderer(m))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, m
}

func addOutput(t *testing.T, c *Compositor, name string, x, y int) *Output {
	t.Helper()
	o, err := c.AddOutput(name, OutputConfig{X: x, Y: y, Width: 100, Height: 80})
	if err != nil {
		t.Fatalf("AddOutput(%q) error = %v", name, err)
	}
	return o
}

func TestNewInitFailure(t *testing.T) {
	errBoom := errors.New("boom")
	reg := plugin.New()
	_, err := New(WithRenderer(&mockRenderer{initErr: errBoom}), WithRegistry(reg))
	if !errors.Is(err, errBoom) {
		t.Fatalf("New() error = %v, want %v", err, errBoom)
	}
	if err := reg.Register("x_api_v1", struct{}{}, mustSchema(t)); !errors.Is(err, plugin.ErrClosed) {
		t.Errorf("registry left open after failed init: %v", err)
	}
}

func TestRendererPublishesDuringInit(t *testing.T) {
	m := &mockRenderer{install: func(c *Compositor) error {
		return c.Registry().Register("mock_api_v1", "table", mustSchema(t))
	}}
	c, err := New(WithRenderer(m))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if m.c != c {
		t.Error("Init did not receive the compositor")
	}
	if _, ok := c.Registry().Lookup("mock_api_v1", mustSchema(t)); !ok {
		t.Error("capability registered during Init is not visible")
	}
}

func TestAddOutput(t *testing.T) {
	c, m := newTestCompositor(t)
	o := addOutput(t, c, "out0", 0, 0)

	if m.outputs != 1 {
		t.Errorf("OutputCreated calls = %d, want 1", m.outputs)
	}
	if !o.Pending() || o.State() != StateRepaintRequested {
		t.Errorf("new output pending=%v state=%v, want first frame requested", o.Pending(), o.State())
	}
	if got := o.PendingDamage().Bounds(); got != o.FramebufferBounds() {
		t.Errorf("initial damage = %v, want %v", got, o.FramebufferBounds())
	}

	if _, err := c.AddOutput("out0", OutputConfig{Width: 10, Height: 10}); !errors.Is(err, ErrDuplicateOutput) {
		t.Errorf("duplicate AddOutput() error = %v, want ErrDuplicateOutput", err)
	}
	if c.Output("out0") != o || c.Output("missing") != nil {
		t.Error("Output() lookup mismatch")
	}
}

func TestRemoveOutput(t *testing.T) {
	c, m := newTestCompositor(t)
	o := addOutput(t, c, "out0", 0, 0)

	if err := c.RemoveOutput(o); err != nil {
		t.Fatalf("RemoveOutput() error = %v", err)
	}
	if err := c.RemoveOutput(o); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("second RemoveOutput() error = %v, want ErrUnknownOutput", err)
	}
	if m.destroyed != 1 || len(c.Outputs()) != 0 {
		t.Errorf("destroyed=%d outputs=%d", m.destroyed, len(c.Outputs()))
	}
	if err := c.RepaintOutput(o); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("RepaintOutput(removed) error = %v, want ErrUnknownOutput", err)
	}
}

func TestSurfaceCommitDamagesOutputs(t *testing.T) {
	c, m := newTestCompositor(t)
	left := addOutput(t, c, "left", 0, 0)
	right := addOutput(t, c, "right", 100, 0)
	runFrame(t, c)

	s, err := c.CreateSurface()
	if err != nil {
		t.Fatalf("CreateSurface() error = %v", err)
	}
	s.SetPosition(90, 10)
	s.Attach(&SolidBuffer{Color: color.RGBA{A: 0xff}, Width: 20, Height: 5})
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if m.commits != 1 {
		t.Errorf("SurfaceCommitted calls = %d, want 1", m.commits)
	}
	if got, want := left.PendingDamage().Bounds(), image.Rect(90, 10, 100, 15); got != want {
		t.Errorf("left damage = %v, want %v", got, want)
	}
	if got, want := right.PendingDamage().Bounds(), image.Rect(0, 10, 10, 15); got != want {
		t.Errorf("right damage = %v, want %v", got, want)
	}
	if got := c.SurfacesIn(image.Rect(95, 0, 96, 100)); len(got) != 1 || got[0] != s {
		t.Errorf("SurfacesIn() = %v, want [s]", got)
	}
}

func TestSurfaceImportFailure(t *testing.T) {
	c, m := newTestCompositor(t)
	o := addOutput(t, c, "out0", 0, 0)
	runFrame(t, c)
	m.importErr = errors.New("cannot import")

	s, _ := c.CreateSurface()
	s.Attach(&SolidBuffer{Width: 10, Height: 10})
	if err := s.Commit(); !errors.Is(err, m.importErr) {
		t.Fatalf("Commit() error = %v, want import error", err)
	}
	if s.Buffer() != nil {
		t.Error("failed import left the buffer applied")
	}
	if o.Pending() {
		t.Error("failed import damaged the output")
	}
}

func TestSurfaceInvalidBuffer(t *testing.T) {
	c, _ := newTestCompositor(t)
	s, _ := c.CreateSurface()

	tests := []struct {
		name string
		buf  *PixelBuffer
	}{
		{"zero size", &PixelBuffer{Format: PixelABGR8888}},
		{"unknown format", &PixelBuffer{Format: 0, Width: 1, Height: 1}},
		{"missing plane", &PixelBuffer{Format: PixelNV12, Width: 2, Height: 2,
			Planes: [][]byte{make([]byte, 4)}, Strides: []int{2}}},
		{"short plane", &PixelBuffer{Format: PixelABGR8888, Width: 2, Height: 2,
			Planes: [][]byte{make([]byte, 12)}, Strides: []int{8}}},
		{"short stride", &PixelBuffer{Format: PixelABGR8888, Width: 2, Height: 2,
			Planes: [][]byte{make([]byte, 16)}, Strides: []int{4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.Attach(tt.buf)
			if err := s.Commit(); !errors.Is(err, ErrInvalidBuffer) {
				t.Errorf("Commit() error = %v, want ErrInvalidBuffer", err)
			}
		})
	}
}

func TestSurfaceDestroy(t *testing.T) {
	c, m := newTestCompositor(t)
	o := addOutput(t, c, "out0", 0, 0)
	s, _ := c.CreateSurface()
	s.Attach(&SolidBuffer{Width: 10, Height: 10})
	_ = s.Commit()
	runFrame(t, c)

	s.Destroy()
	s.Destroy()
	if m.surfGone != 1 {
		t.Errorf("SurfaceDestroyed calls = %d, want 1", m.surfGone)
	}
	if !o.Pending() {
		t.Error("destroying a visible surface did not damage the output")
	}
	if err := s.Commit(); !errors.Is(err, ErrSurfaceDestroyed) {
		t.Errorf("Commit() after Destroy error = %v", err)
	}
	if len(c.Surfaces()) != 0 {
		t.Errorf("Surfaces() = %d, want 0", len(c.Surfaces()))
	}
}

func TestRaiseSurface(t *testing.T) {
	c, _ := newTestCompositor(t)
	a, _ := c.CreateSurface()
	b, _ := c.CreateSurface()

	c.RaiseSurface(a)
	got := c.Surfaces()
	if got[0] != b || got[1] != a {
		t.Errorf("stack after RaiseSurface = [%d %d], want [%d %d]", got[0].ID(), got[1].ID(), b.ID(), a.ID())
	}
}

func TestClose(t *testing.T) {
	m := &mockRenderer{}
	c, err := New(WithRenderer(m))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	addOutput(t, c, "out0", 0, 0)
	_, _ = c.CreateSurface()
	c.SetCustomRenderer(func(*Output, Region) bool { return true })

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if m.closed != 1 || m.destroyed != 1 || m.surfGone != 1 {
		t.Errorf("closed=%d outputs destroyed=%d surfaces destroyed=%d, want 1 each",
			m.closed, m.destroyed, m.surfGone)
	}
	if c.HasCustomRenderer() || !c.Closed() {
		t.Error("Close did not clear hooks")
	}
	if c.Registry().Len() != 0 {
		t.Error("Close did not tear down the registry")
	}
	if _, err := c.Frame(t.Context()); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame() after Close error = %v, want ErrClosed", err)
	}
	if _, err := c.AddOutput("late", OutputConfig{Width: 1, Height: 1}); !errors.Is(err, ErrClosed) {
		t.Errorf("AddOutput() after Close error = %v, want ErrClosed", err)
	}
	if _, err := c.CreateSurface(); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateSurface() after Close error = %v, want ErrClosed", err)
	}
}

func runFrame(t *testing.T, c *Compositor) int {
	t.Helper()
	n, err := c.Frame(t.Context())
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	return n
}
