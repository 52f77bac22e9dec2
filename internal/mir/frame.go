package mir

// FrameIndex numbers a spill slot. Frame indices are monotone per function
// and never reused.
type FrameIndex int32

const InvalidFrameIndex FrameIndex = -1

// FrameSlotKind distinguishes why a frame slot exists, for frame lowering's
// layout decisions.
type FrameSlotKind uint8

const (
	SlotSpill FrameSlotKind = iota
	SlotCalleeSave
	SlotAlloca
	// SlotStackParam is a parameter passed on the stack because it fell
	// beyond the argument-register limit. Its Offset is computed above the frame rather than within
	// the spill area: [sp + StackSize + sizes of lower-indexed stack params].
	SlotStackParam
)

// FrameSlot is one assigned stack location.
type FrameSlot struct {
	Index  FrameIndex
	Kind   FrameSlotKind
	Size   int32 // bytes
	Offset int32 // byte offset from SP, assigned by frame lowering
	// Reg is set for SlotCalleeSave: the physical register this slot saves.
	Reg Register
	// ParamIndex is set for SlotStackParam: the 0-based position among
	// stack-passed parameters, used to order their offsets.
	ParamIndex int32
}

// MFrameInfo describes a function's spill-slot -> byte-offset assignments,
// built up during register allocation and finalized during frame lowering.
type MFrameInfo struct {
	Slots        []FrameSlot
	StackSize    int32
	HasStackParam bool
	ParamSize    int32 // total bytes of stack-passed parameters, set by frame lowering
}

// AllocSlot reserves a fresh frame index for a slot of the given kind/size.
func (fi *MFrameInfo) AllocSlot(kind FrameSlotKind, size int32) FrameIndex {
	idx := FrameIndex(len(fi.Slots))
	fi.Slots = append(fi.Slots, FrameSlot{Index: idx, Kind: kind, Size: size})
	return idx
}

// Slot returns a pointer to the slot with the given index.
func (fi *MFrameInfo) Slot(idx FrameIndex) *FrameSlot {
	return &fi.Slots[idx]
}
