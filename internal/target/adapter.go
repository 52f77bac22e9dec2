// Package target defines the capability surfaces a concrete ISA backend
// (internal/isa/arm64 being the reference target) must implement, and the
// process-wide registry those backends publish themselves through.
//
// InstrAdapter is the sole boundary between target-agnostic passes (CFG, φ
// elim, RA) and target-specific encoding: every pass outside internal/isa
// queries instructions only through this interface, never by switching on
// an Opcode directly (pseudo-opcodes are the one exception, since every
// target shares them).
package target

import "github.com/nkucc/mirbackend/internal/mir"

// InstrAdapter abstracts the per-target shape of MInstructions. It is stateless and deterministic.
type InstrAdapter interface {
	IsCall(i *mir.MInstruction) bool
	IsReturn(i *mir.MInstruction) bool
	IsUncondBranch(i *mir.MInstruction) bool
	IsCondBranch(i *mir.MInstruction) bool

	// ExtractBranchTarget returns the target block id of a branch
	// instruction, or -1 if i is not a branch.
	ExtractBranchTarget(i *mir.MInstruction) int64

	// EnumUses/EnumDefs enumerate register operands read/written, including
	// implicit defs such as the link register on calls.
	EnumUses(i *mir.MInstruction) []mir.Register
	EnumDefs(i *mir.MInstruction) []mir.Register

	// ReplaceUse/ReplaceDef perform structural substitution on matching
	// register operands only.
	ReplaceUse(i *mir.MInstruction, from, to mir.Register)
	ReplaceDef(i *mir.MInstruction, from, to mir.Register)

	// IsCopy recognizes target moves plus the pseudo MOVE, returning
	// (dst, src, true) when i is a copy.
	IsCopy(i *mir.MInstruction) (dst, src mir.Register, ok bool)

	// EnumPhysRegs returns the physical registers implicitly clobbered or
	// defined by i (e.g. caller-saved registers across a call).
	EnumPhysRegs(i *mir.MInstruction) []mir.Register

	// InsertReloadBefore inserts a target-appropriate load of physReg from
	// the numbered spill slot, immediately before block.Instrs[at].
	InsertReloadBefore(ctx *mir.MContext, block *mir.Block, at int, physReg mir.Register, frameIndex mir.FrameIndex)
	// InsertSpillAfter inserts a target-appropriate store of physReg to the
	// numbered spill slot, immediately after block.Instrs[at].
	InsertSpillAfter(ctx *mir.MContext, block *mir.Block, at int, physReg mir.Register, frameIndex mir.FrameIndex)

	// SetBranchTarget redirects a branch instruction (as recognized by
	// IsCondBranch/IsUncondBranch) to target block to. Used by internal/
	// phielim when splitting a critical edge to retarget the original branch
	// at its freshly-inserted trampoline.
	SetBranchTarget(i *mir.MInstruction, to mir.BlockID)

	// NewUncondBranch builds a fresh unconditional branch instruction to
	// block to, allocating its id from ctx. internal/phielim uses this to
	// populate a critical-edge trampoline block, and to materialize an
	// implicit fall-through edge as an explicit branch when splitting it.
	NewUncondBranch(ctx *mir.MContext, to mir.BlockID) *mir.MInstruction
}

// IsBranchOrReturn reports whether i is any kind of branch or a return —
// the stopping condition CFG building and φ-elim's insertion-point search
// both use.
func IsBranchOrReturn(a InstrAdapter, i *mir.MInstruction) bool {
	return a.IsReturn(i) || a.IsUncondBranch(i) || a.IsCondBranch(i)
}

// IsTerminator reports whether i ends a block: a return or an unconditional
// branch (conditional branches fall through).
func IsTerminator(a InstrAdapter, i *mir.MInstruction) bool {
	return a.IsReturn(i) || a.IsUncondBranch(i)
}
