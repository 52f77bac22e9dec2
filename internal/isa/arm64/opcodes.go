package arm64

import "github.com/nkucc/mirbackend/internal/mir"

// Real AArch64 opcodes, assigned above mir.OpcodeTargetBase. Grounded
// on the instruction set backend/isa/arm64/instr.go enumerates, narrowed to
// the handful this module's DAG opcodes actually lower to.
const (
	opADD mir.Opcode = mir.OpcodeTargetBase + iota
	opSUB
	opMUL
	opSDIV
	opUDIV
	opAND
	opORR
	opEOR
	opLSL
	opLSR
	opMOVZ  // move 64-bit integer immediate into a register
	opFMOV  // move float immediate into a register
	opCMP   // compare two registers, setting flags
	opCSET  // set register to 1/0 from a condition flag
	opLDR   // load from [base, #offset]
	opSTR   // store to [base, #offset]
	opB     // unconditional branch to a label
	opBCOND // conditional branch to a label, flags already set by a CMP
	opBL    // branch with link (call)
	opRET
	opSUBSP // sub sp, sp, #imm (prologue stack allocation)
	opADDSP // add sp, sp, #imm (epilogue stack deallocation)
)
