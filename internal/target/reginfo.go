package target

import "github.com/nkucc/mirbackend/internal/mir"

// RegInfo supplies the statically-known per-target register information
// register allocation and frame lowering need.
type RegInfo interface {
	StackPointer() mir.Register
	ReturnAddress() mir.Register
	ZeroRegister() (mir.Register, bool) // ok=false if the target has none

	IntArgRegs() []mir.Register
	FloatArgRegs() []mir.Register

	CalleeSavedInt() []mir.Register
	CalleeSavedFloat() []mir.Register

	// Reserved returns registers never handed out by the allocator (sp, zero,
	// platform-reserved registers, ...).
	Reserved() []mir.Register

	// IntRegs/FloatRegs return the full physical pool for each class, in
	// the scan order every "choose a physical register" operation uses for
	// determinism.
	IntRegs() []mir.Register
	FloatRegs() []mir.Register

	// ScratchInt/ScratchFloat return a reserved-for-reload scratch register
	// of the given class, used by regalloc to materialize a spilled use
	//.
	ScratchInt() mir.Register
	ScratchFloat() mir.Register

	// StackAlignment is the target's required stack alignment in bytes
	// (16 for AArch64).
	StackAlignment() int32
}

// IsReserved reports whether r is in the reserved set.
func IsReserved(ri RegInfo, r mir.Register) bool {
	for _, x := range ri.Reserved() {
		if x == r {
			return true
		}
	}
	return false
}

// IsCalleeSaved reports whether r is a callee-saved physical register.
func IsCalleeSaved(ri RegInfo, r mir.Register) bool {
	set := ri.CalleeSavedInt()
	if r.Class() == mir.ClassFloat {
		set = ri.CalleeSavedFloat()
	}
	for _, x := range set {
		if x == r {
			return true
		}
	}
	return false
}
