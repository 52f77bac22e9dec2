package regalloc

import (
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// regPool is a free-list of physical registers for one class, handed out
// in the target's declared scan order for deterministic allocation
//. Reserved registers never
// enter the pool.
type regPool struct {
	order       []mir.Register
	free        map[mir.Register]bool
	calleeSaved map[mir.Register]bool
}

func newRegPool(order, calleeSaved, reserved []mir.Register) *regPool {
	isReserved := make(map[mir.Register]bool, len(reserved))
	for _, r := range reserved {
		isReserved[r] = true
	}
	cs := make(map[mir.Register]bool, len(calleeSaved))
	for _, r := range calleeSaved {
		cs[r] = true
	}

	p := &regPool{free: make(map[mir.Register]bool), calleeSaved: cs}
	for _, r := range order {
		if isReserved[r] {
			continue
		}
		p.order = append(p.order, r)
		p.free[r] = true
	}
	return p
}

// alloc hands out a free register in scan order. When preferCalleeSaved is
// true it first looks for a callee-saved register (the interval crosses a
// call), falling back to whatever is free.
func (p *regPool) alloc(preferCalleeSaved bool) (mir.Register, bool) {
	for _, r := range p.order {
		if p.free[r] && p.calleeSaved[r] == preferCalleeSaved {
			p.free[r] = false
			return r, true
		}
	}
	for _, r := range p.order {
		if p.free[r] {
			p.free[r] = false
			return r, true
		}
	}
	return mir.Register{}, false
}

func (p *regPool) release(r mir.Register) {
	p.free[r] = true
}

// isCalleeSaved reports whether r is in this pool's callee-saved set.
func (p *regPool) isCalleeSaved(r mir.Register) bool {
	return p.calleeSaved[r]
}

// classPools is the pair of per-class pools an allocator draws from.
type classPools struct {
	intPool, floatPool *regPool
}

func newClassPools(ri target.RegInfo) *classPools {
	return &classPools{
		intPool:   newRegPool(ri.IntRegs(), ri.CalleeSavedInt(), ri.Reserved()),
		floatPool: newRegPool(ri.FloatRegs(), ri.CalleeSavedFloat(), ri.Reserved()),
	}
}

func (p *classPools) pool(c mir.Class) *regPool {
	if c == mir.ClassFloat {
		return p.floatPool
	}
	return p.intPool
}
