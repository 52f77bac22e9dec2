package mir

// BlockID is a function-local block identifier. Block 0 is the entry by
// convention.
type BlockID uint32

// Block is an ordered sequence of MInstructions under a unique blockId.
// Invariant: all φs precede all non-φs; at most one terminator and it is
// last.
type Block struct {
	ID    BlockID
	Instrs []*MInstruction
}

// NewBlock allocates an empty block.
func NewBlock(id BlockID) *Block {
	return &Block{ID: id}
}

// Append adds an instruction at the end of the block.
func (b *Block) Append(i *MInstruction) {
	b.Instrs = append(b.Instrs, i)
}

// InsertBefore inserts i immediately before the instruction at position idx.
func (b *Block) InsertBefore(idx int, i *MInstruction) {
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[idx+1:], b.Instrs[idx:])
	b.Instrs[idx] = i
}

// IndexOf returns the position of instruction id in the block, or -1.
func (b *Block) IndexOf(id InstrID) int {
	for idx, inst := range b.Instrs {
		if inst.ID == id {
			return idx
		}
	}
	return -1
}

// Phis returns the leading run of PHI instructions.
func (b *Block) Phis() []*MInstruction {
	var out []*MInstruction
	for _, i := range b.Instrs {
		if i.Opcode != OpcodePhi {
			break
		}
		out = append(out, i)
	}
	return out
}

// RemovePhis erases every φ from the block.
func (b *Block) RemovePhis() {
	i := 0
	for i < len(b.Instrs) && b.Instrs[i].Opcode == OpcodePhi {
		i++
	}
	b.Instrs = b.Instrs[i:]
}

// Terminator returns the last instruction of the block, or nil if empty.
func (b *Block) Terminator() *MInstruction {
	if len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

