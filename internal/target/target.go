package target

import (
	"github.com/nkucc/mirbackend/internal/dag"
	"github.com/nkucc/mirbackend/internal/legalize"
	"github.com/nkucc/mirbackend/internal/mir"
)

// Selector lowers one IR block's already-legalized selection DAG into MIR
// instructions appended to mblock. This is inherently target-specific: since
// InstrAdapter is the sole boundary between target-agnostic passes and
// target-specific encoding, isel itself, along with DAG legalization's extra
// rules, is the other side of that boundary.
type Selector interface {
	// frameInfo lets selection reserve a stack slot directly — needed only
	// for an allocation-instruction's address, since its frame offset is
	// unknown until frame lowering runs but the slot itself must exist as
	// soon as the alloca is selected.
	SelectBlock(ctx *mir.MContext, d *dag.SelectionDAG, roots []dag.SDValue, mblock *mir.Block, frameInfo *mir.MFrameInfo)
}

// BackendTarget is the per-target capability bundle a compilation is built
// against. It is stateless and
// constructed fresh per compilation by a registered Factory returns a fresh backend").
type BackendTarget interface {
	Name() string
	Adapter() InstrAdapter
	RegInfo() RegInfo
	Selector() Selector

	// ExtraLegalizeRules returns target-specific DAG legalization rules
	// beyond the core's mandatory ICmp canonicalization.
	ExtraLegalizeRules() []legalize.ExtraRule

	// MaterializeFrameAccess replaces one FILoad/FIStore pseudo-instruction
	// with the target's real load/store addressing [sp + offset].
	MaterializeFrameAccess(ctx *mir.MContext, inst *mir.MInstruction, offset int32) *mir.MInstruction

	// EmitPrologue/EmitEpilogue build the real instructions that save and
	// restore the link register and calleeSaved, and adjust sp by
	// stackSize.
	EmitPrologue(ctx *mir.MContext, calleeSaved []mir.Register, stackSize int32) []*mir.MInstruction
	EmitEpilogue(ctx *mir.MContext, calleeSaved []mir.Register, stackSize int32) []*mir.MInstruction

	// EmitFunctionHeader/EmitBlockLabel/EmitInstr/EmitGlobal format one
	// piece of the module's textual assembly. They append to
	// out and return nothing; formatting details are this target's concern,
	// not the core's.
	EmitFunctionHeader(out *[]string, f *mir.Function)
	EmitBlockLabel(out *[]string, f *mir.Function, id mir.BlockID)
	EmitInstr(out *[]string, inst *mir.MInstruction)
	EmitGlobal(out *[]string, g *mir.GlobalVariable)
	EmitSectionHeaders(out *[]string)
}
