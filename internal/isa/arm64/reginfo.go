package arm64

import (
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/types"
)

// Physical register ids. Int and float live in separate namespaces — a
// mir.Register's Class (derived from its Type) is what keeps an int id 3
// and a float id 3 from ever comparing equal.
const (
	regSP  = 31 // stack pointer, reserved
	regFP  = 29 // x29, frame pointer
	regLR  = 30 // x30, link register
	regXZR = 32 // zero register, reserved, not in IntRegs()
)

func xreg(id mir.RegID) mir.Register { return mir.Register{ID: id, Type: types.I64} }
func dreg(id mir.RegID) mir.Register { return mir.Register{ID: id, Type: types.F64} }

// reginfo implements target.RegInfo for AAPCS64.
// Every physical register is surfaced as a 64-bit register (I64/F64):
// regalloc's rewriteEverywhere replaces a virtual register's whole value,
// original width included, with the physical one it assigns, so this
// target never distinguishes "w0" from "x0" — it always emits the 64-bit
// name, a simplification documented in DESIGN.md.
type reginfo struct{}

func (reginfo) StackPointer() mir.Register  { return xreg(regSP) }
func (reginfo) ReturnAddress() mir.Register { return xreg(regLR) }
func (reginfo) ZeroRegister() (mir.Register, bool) { return xreg(regXZR), true }

// IntArgRegs/FloatArgRegs: x0-x7 and d0-d7 per AAPCS64.
func (reginfo) IntArgRegs() []mir.Register {
	return []mir.Register{xreg(0), xreg(1), xreg(2), xreg(3), xreg(4), xreg(5), xreg(6), xreg(7)}
}

func (reginfo) FloatArgRegs() []mir.Register {
	return []mir.Register{dreg(0), dreg(1), dreg(2), dreg(3), dreg(4), dreg(5), dreg(6), dreg(7)}
}

// CalleeSavedInt: x19-x28 (AAPCS64 callee-saved general registers).
func (reginfo) CalleeSavedInt() []mir.Register {
	out := make([]mir.Register, 0, 10)
	for i := mir.RegID(19); i <= 28; i++ {
		out = append(out, xreg(i))
	}
	return out
}

// CalleeSavedFloat: the low 64 bits of d8-d15 (AAPCS64 callee-saved SIMD&FP
// registers).
func (reginfo) CalleeSavedFloat() []mir.Register {
	out := make([]mir.Register, 0, 8)
	for i := mir.RegID(8); i <= 15; i++ {
		out = append(out, dreg(i))
	}
	return out
}

// Reserved: sp, the zero register, fp and lr (the allocator never hands
// these out; EmitPrologue/EmitEpilogue save and restore lr, and fp is left
// untouched), and the scratch registers x16/x17 and d16.
func (reginfo) Reserved() []mir.Register {
	return []mir.Register{xreg(regSP), xreg(regXZR), xreg(regFP), xreg(regLR), xreg(16), xreg(17), dreg(16)}
}

// IntRegs: x0-x28 minus the reserved set above, in ascending scan order
//.
func (reginfo) IntRegs() []mir.Register {
	out := make([]mir.Register, 0, 29)
	for i := mir.RegID(0); i <= 28; i++ {
		if i == 16 || i == 17 {
			continue // reserved scratch registers
		}
		out = append(out, xreg(i))
	}
	return out
}

// FloatRegs: d0-d15 minus the reserved scratch d16.
func (reginfo) FloatRegs() []mir.Register {
	out := make([]mir.Register, 0, 16)
	for i := mir.RegID(0); i <= 15; i++ {
		out = append(out, dreg(i))
	}
	return out
}

func (reginfo) ScratchInt() mir.Register   { return xreg(16) }
func (reginfo) ScratchFloat() mir.Register { return dreg(16) }

func (reginfo) StackAlignment() int32 { return 16 }
