package mir

import "github.com/nkucc/mirbackend/internal/types"

// MContext holds the monotone counters a Function needs to allocate fresh
// virtual registers and instruction ids.
//
// A process-wide counter would be a design smell: tests would need to seed
// or reset it to obtain reproducible ids. Instead every Function owns its
// own MContext, so two functions (or two test cases) never share counter
// state.
type MContext struct {
	nextVReg   RegID
	nextInstr  InstrID
}

// NewVReg allocates a fresh virtual register of the given type.
func (c *MContext) NewVReg(t *types.DataType) Register {
	c.nextVReg++
	return Register{ID: c.nextVReg, Type: t, IsVirtual: true}
}

// NewInstrID allocates a fresh instruction id.
func (c *MContext) NewInstrID() InstrID {
	c.nextInstr++
	return c.nextInstr
}
