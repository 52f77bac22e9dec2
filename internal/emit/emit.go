// Package emit serializes a fully lowered MIR module as textual assembly
//, the last stage of the pipeline.
package emit

import (
	"strings"

	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// Module walks m in order — section headers, globals, then functions — and
// formats each piece through bt, which owns every target-specific
// formatting decision.
func Module(m *mir.Module, bt target.BackendTarget) string {
	var out []string

	bt.EmitSectionHeaders(&out)
	for _, g := range m.Globals {
		bt.EmitGlobal(&out, g)
	}
	for _, f := range m.Functions {
		Function(&out, f, bt)
	}

	return strings.Join(out, "\n") + "\n"
}

// Function appends one function's header, block labels, and instructions
// to out, in block-insertion order.
func Function(out *[]string, f *mir.Function, bt target.BackendTarget) {
	bt.EmitFunctionHeader(out, f)
	for _, id := range f.BlockOrder {
		bt.EmitBlockLabel(out, f, id)
		for _, inst := range f.Blocks[id].Instrs {
			bt.EmitInstr(out, inst)
		}
	}
}
