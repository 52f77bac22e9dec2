// Package regalloc assigns physical registers to every virtual register a
// function uses, spilling to frame slots under pressure. Two strategies are offered: LinearScan, the
// default, and GraphColoring — the spec's register-allocation Open
// Question ("left unimplemented, a stub returning an error") is resolved
// here by implementing both rather than leaving either a stub.
package regalloc

import (
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// Strategy selects which allocator Allocate below builds.
type Strategy uint8

const (
	LinearScan Strategy = iota
	GraphColoring
)

func (s Strategy) String() string {
	if s == GraphColoring {
		return "graph-coloring"
	}
	return "linear-scan"
}

// Allocator assigns registers to one function in place: MIR instructions
// are rewritten to reference physical registers, and f.FrameInfo gains one
// spill slot per register that could not be kept live in a physical one.
type Allocator interface {
	Allocate(f *mir.Function, ri target.RegInfo, adapter target.InstrAdapter) error
}

// New builds the allocator for strategy.
func New(strategy Strategy) Allocator {
	if strategy == GraphColoring {
		return &coloringAllocator{}
	}
	return &linearScanAllocator{}
}
