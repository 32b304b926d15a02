// Command compdemo runs a headless compositor with the software renderer and
// an extension module that takes over the repaint of selected outputs
// through the renderer extension table.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend/software"
)

func main() {
	var (
		config  = flag.String("config", "", "layout file (YAML); built-in layout if empty")
		outDir  = flag.String("out", ".", "directory for the output PNGs")
		frames  = flag.Int("frames", 0, "frames to run (overrides the layout)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	layout, err := loadLayout(*config)
	if err != nil {
		log.Fatalf("Failed to load layout: %v", err)
	}
	if *frames > 0 {
		layout.Frames = *frames
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, layout, *outDir); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, layout *Layout, outDir string) error {
	c, err := compositor.New(compositor.WithBackend(layout.Backend))
	if err != nil {
		return err
	}
	defer c.Close()

	overridden := make(map[*compositor.Output]bool)
	for _, ol := range layout.Outputs {
		o, err := c.AddOutput(ol.Name, ol.config())
		if err != nil {
			return err
		}
		overridden[o] = ol.Override
	}

	for i, sl := range layout.Surfaces {
		col, err := parseColor(sl.Color)
		if err != nil {
			return fmt.Errorf("surface %d: %w", i, err)
		}
		s, err := c.CreateSurface()
		if err != nil {
			return err
		}
		s.SetPosition(sl.X, sl.Y)
		s.Attach(&compositor.SolidBuffer{Color: col, Width: sl.Width, Height: sl.Height})
		if err := s.Commit(); err != nil {
			return fmt.Errorf("surface %d: %w", i, err)
		}
	}

	ext, err := newOverlay(c, overridden)
	if err != nil {
		return err
	}

	n, err := c.RunFrames(ctx, layout.Frames)
	if err != nil {
		return err
	}
	log.Printf("Ran %d frames, %d painted by the extension", n, ext.painted)
	for _, o := range c.Outputs() {
		log.Printf("  %s: %d cycles", o.Name(), ext.cycles[o.Name()])
	}

	for _, o := range c.Outputs() {
		fb := software.Framebuffer(o)
		if fb == nil {
			continue
		}
		path := filepath.Join(outDir, o.Name()+".png")
		if err := savePNG(path, fb); err != nil {
			return err
		}
		log.Printf("Output %s saved to %s (%dx%d)", o.Name(), path, o.Width(), o.Height())
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
