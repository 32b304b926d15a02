// Package compositor is the capability negotiation layer between a display
// compositor and its pluggable rendering backends.
//
// # Overview
//
// A Compositor owns three things extension modules care about:
//
//   - a capability registry (package plugin) where optional subsystems
//     publish versioned tables of operations under well-known names;
//   - the repaint pipeline of every Output, which an external renderer can
//     intercept (SetCustomRenderer) or observe (SetPostRender);
//   - the Surface and Output identities passed into every capability query.
//
// The renderer extension table itself lives in package renderer. A backend
// such as backend/software installs it while the compositor starts:
//
//	import _ "github.com/gogpu/compositor/backend/software"
//
//	c, err := compositor.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	api, ok := renderer.Get(c)
//	if !ok {
//	    // no renderer extension: keep the built-in behavior
//	}
//
// # Repaint Cycle
//
// Each output moves through Idle, RepaintRequested, DispatchCustom,
// DispatchBuiltin and PostRender once per cycle:
//
//   - Damage or ScheduleRepaint moves an idle output to RepaintRequested.
//     ScheduleRepaint forces the next frame even without damage.
//   - If a custom renderer is installed it is called with the damage.
//     Returning true skips the built-in path for this cycle.
//   - Otherwise the Renderer's RepaintOutput paints the frame.
//   - The post-render hook runs exactly once per cycle, after either path.
//
// Frame gives every pending output one cycle; it is the host's frame
// opportunity.
//
// # Thread Safety
//
// A Compositor and its outputs and surfaces belong to a single goroutine.
// Hooks run synchronously within the cycle that calls them; a hook that
// blocks stalls the compositor.
//
// # Coordinate System
//
//   - Surfaces and outputs are placed in a global space, origin top-left.
//   - Damage regions and viewports are in output framebuffer pixels, where
//     the usable area starts after the top and left borders.
package compositor
