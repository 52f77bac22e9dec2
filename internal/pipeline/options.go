package pipeline

import "github.com/nkucc/mirbackend/internal/regalloc"

// Options configures one call to Run. It is populated by the CLI layer
// (cmd/mirc) and carries nothing the core pipeline couldn't run without —
// every field has a sensible zero-value default.
type Options struct {
	// Target names a registered backend (target.Lookup), e.g. "aarch64".
	Target string

	// RAStrategy selects linear-scan (the default, zero value) or
	// graph-coloring register allocation.
	RAStrategy regalloc.Strategy

	// DisableStackBoundsCheck skips whatever guard the target's prologue
	// would otherwise emit against stack overflow. Off by default; no
	// target in this module currently emits such a guard, so this is a
	// forward-compatible knob rather than a load-bearing one.
	DisableStackBoundsCheck bool

	// Verbose raises the diagnostics logger to debug level.
	Verbose bool
}
