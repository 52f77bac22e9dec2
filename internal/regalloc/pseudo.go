package regalloc

import (
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// instrDefs/instrUses special-case the pseudo-opcodes, which every target
// shares and which target.InstrAdapter's EnumDefs/EnumUses are not asked to
// know about (target/adapter.go: "pseudo-opcodes are the one exception").
// Real opcodes delegate straight to the adapter.
func instrDefs(adapter target.InstrAdapter, i *mir.MInstruction) []mir.Register {
	switch i.Opcode {
	case mir.OpcodeMove:
		dst, _ := i.MoveOperands()
		return []mir.Register{dst}
	case mir.OpcodeFILoad, mir.OpcodeFIAddr:
		return []mir.Register{i.Operands[0].Reg}
	case mir.OpcodeFIStore, mir.OpcodeNop, mir.OpcodePhi:
		return nil
	default:
		return adapter.EnumDefs(i)
	}
}

func instrUses(adapter target.InstrAdapter, i *mir.MInstruction) []mir.Register {
	switch i.Opcode {
	case mir.OpcodeMove:
		_, src := i.MoveOperands()
		return []mir.Register{src}
	case mir.OpcodeFIStore:
		return []mir.Register{i.Operands[0].Reg}
	case mir.OpcodeFILoad, mir.OpcodeFIAddr, mir.OpcodeNop, mir.OpcodePhi:
		return nil
	default:
		return adapter.EnumUses(i)
	}
}

func containsReg(regs []mir.Register, r mir.Register) bool {
	for _, x := range regs {
		if x == r {
			return true
		}
	}
	return false
}
