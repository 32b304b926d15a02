package compositor

import (
	"context"
	"errors"
	"fmt"
)

// CustomRenderer replaces the built-in paint path of an output for one
// repaint cycle. It receives the output and the damage accumulated since
// the previous cycle, and returns true if it painted the output itself.
// Returning false falls through to the built-in path.
type CustomRenderer func(o *Output, damage Region) bool

// PostRender observes every completed repaint of every output, whichever
// path painted it.
type PostRender func(o *Output)

// SetCustomRenderer installs the compositor-wide custom renderer, replacing
// any previous one. Nil uninstalls it.
//
// Installing during a repaint cycle affects the next dispatch: a cycle that
// already passed its custom dispatch point keeps the decision it made.
func (c *Compositor) SetCustomRenderer(fn CustomRenderer) {
	c.custom = fn
}

// SetPostRender installs the compositor-wide post-render hook, replacing
// any previous one. Nil uninstalls it.
func (c *Compositor) SetPostRender(fn PostRender) {
	c.post = fn
}

// HasCustomRenderer reports whether a custom renderer is installed.
func (c *Compositor) HasCustomRenderer() bool { return c.custom != nil }

// HasPostRender reports whether a post-render hook is installed.
func (c *Compositor) HasPostRender() bool { return c.post != nil }

// Frame is one frame opportunity. Every output with recorded damage or a
// forced repaint request runs one repaint cycle; idle outputs are skipped.
//
// Frame returns the number of outputs repainted. Built-in paint errors are
// joined and returned after all outputs ran; they do not stop the frame.
// ctx is checked once before any output is touched: a cycle in progress is
// never cancelled.
func (c *Compositor) Frame(ctx context.Context) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var errs []error
	n := 0
	for _, o := range c.Outputs() {
		// A hook earlier in this frame may have removed o.
		if o.removed || !o.Pending() {
			continue
		}
		if err := c.repaint(o); err != nil {
			errs = append(errs, err)
		}
		n++
	}
	return n, errors.Join(errs...)
}

// RunFrames runs up to n frames, stopping early when ctx is done.
// It returns the number of frames run.
func (c *Compositor) RunFrames(ctx context.Context, n int) (int, error) {
	for i := range n {
		if _, err := c.Frame(ctx); err != nil {
			return i, err
		}
	}
	return n, nil
}

// RepaintOutput runs one repaint cycle on o now, whether or not anything
// is pending.
func (c *Compositor) RepaintOutput(o *Output) error {
	if c.closed {
		return ErrClosed
	}
	if o == nil || o.c != c || o.removed {
		return ErrUnknownOutput
	}
	return c.repaint(o)
}

// repaint drives one cycle of o through the repaint state machine:
//
//	RepaintRequested -> DispatchCustom -> [DispatchBuiltin] -> PostRender -> Idle
//
// The built-in path runs only if no custom renderer is installed or the
// custom renderer declined the frame. The post-render hook runs once per
// cycle in every case, unless the custom renderer removed the output, which
// ends the cycle at once.
func (c *Compositor) repaint(o *Output) error {
	damage := o.takeDamage()
	o.state = StateRepaintRequested

	handled := false
	if fn := c.custom; fn != nil {
		o.state = StateDispatchCustom
		handled = fn(o, damage)
		if o.removed {
			o.state = StateIdle
			return nil
		}
	}

	var err error
	if handled {
		c.logger.Debug("compositor: frame painted by custom renderer", "output", o.name)
	} else {
		o.state = StateDispatchBuiltin
		if err = c.renderer.RepaintOutput(o, damage); err != nil {
			c.logger.Warn("compositor: built-in repaint failed", "output", o.name, "err", err)
			err = fmt.Errorf("compositor: output %q: %w", o.name, err)
		}
	}

	o.frames++
	o.state = StatePostRender
	if fn := c.post; fn != nil {
		fn(o)
	}

	if o.Pending() && !o.removed {
		o.state = StateRepaintRequested
	} else {
		o.state = StateIdle
	}
	return err
}
