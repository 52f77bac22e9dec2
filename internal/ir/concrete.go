package ir

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nkucc/mirbackend/internal/types"
)

// LoadModule reads a module serialized as JSON from path and resolves it
// into the ir.Module/Function/Block/Instruction/Value surface above.
//
// Parsing the middle-end's own optimized-SSA textual form is explicitly
// out of scope; no library in the retrieval pack offers a ready-made
// parser for a bespoke IR grammar either, and inventing one would add
// scope the spec deliberately excludes. JSON via the standard library is
// the minimal concrete boundary format a driver needs to hand this
// package something real — every field below mirrors exactly the shape
// ir.Instruction already exposes.
func LoadModule(path string) (Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ir: reading %s: %w", path, err)
	}
	var raw rawModule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ir: parsing %s: %w", path, err)
	}
	return buildModule(raw)
}

type rawModule struct {
	Name      string        `json:"name"`
	Functions []rawFunction `json:"functions"`
}

type rawFunction struct {
	Name   string     `json:"name"`
	Params []string   `json:"params"`
	Blocks []rawBlock `json:"blocks"`
}

type rawBlock struct {
	ID     uint32     `json:"id"`
	Instrs []rawInstr `json:"instrs"`
}

type rawInstr struct {
	Op         string              `json:"op"`
	Type       string              `json:"type,omitempty"`
	Operands   []rawValue          `json:"operands,omitempty"`
	Pred       string              `json:"pred,omitempty"`
	IntImm     int64               `json:"int_imm,omitempty"`
	FloatImm   float32             `json:"float_imm,omitempty"`
	Target     uint32              `json:"target,omitempty"`
	Name       string              `json:"name,omitempty"`
	PhiSources map[string]rawValue `json:"phi_sources,omitempty"`
}

// rawValue references either a parameter by index or an instruction's
// result by (block, index-within-block).
type rawValue struct {
	Kind  string `json:"kind"` // "param" | "instr"
	Param int    `json:"param,omitempty"`
	Block uint32 `json:"block,omitempty"`
	Index int    `json:"index,omitempty"`
}

func buildModule(raw rawModule) (Module, error) {
	m := &concreteModule{}
	for _, rf := range raw.Functions {
		f, err := buildFunction(rf)
		if err != nil {
			return nil, fmt.Errorf("ir: function %s: %w", rf.Name, err)
		}
		m.functions = append(m.functions, f)
	}
	return m, nil
}

func buildFunction(rf rawFunction) (*concreteFunction, error) {
	f := &concreteFunction{name: rf.Name}
	for _, p := range rf.Params {
		t, err := typeOf(p)
		if err != nil {
			return nil, err
		}
		f.params = append(f.params, &concreteValue{typ: t})
	}

	// First pass: allocate every instruction so forward/self references
	// within the function resolve regardless of block visitation order.
	built := make(map[uint32][]*concreteInstr, len(rf.Blocks))
	for _, rb := range rf.Blocks {
		insts := make([]*concreteInstr, len(rb.Instrs))
		for i := range rb.Instrs {
			insts[i] = &concreteInstr{}
		}
		built[rb.ID] = insts
	}

	resolve := func(v rawValue) (Value, error) {
		switch v.Kind {
		case "param":
			if v.Param < 0 || v.Param >= len(f.params) {
				return nil, fmt.Errorf("param index %d out of range", v.Param)
			}
			return f.params[v.Param], nil
		case "instr":
			insts, ok := built[v.Block]
			if !ok || v.Index < 0 || v.Index >= len(insts) {
				return nil, fmt.Errorf("instr reference block %d index %d out of range", v.Block, v.Index)
			}
			return insts[v.Index], nil
		default:
			return nil, fmt.Errorf("unknown value kind %q", v.Kind)
		}
	}

	for _, rb := range rf.Blocks {
		blk := &concreteBlock{id: BlockID(rb.ID)}
		insts := built[rb.ID]
		for i, ri := range rb.Instrs {
			ci := insts[i]
			op, err := opcodeOf(ri.Op)
			if err != nil {
				return nil, err
			}
			ci.opcode = op
			ci.name = ri.Name
			ci.intImm = ri.IntImm
			ci.floatImm = ri.FloatImm
			ci.target = BlockID(ri.Target)
			if ri.Type != "" {
				t, err := typeOf(ri.Type)
				if err != nil {
					return nil, err
				}
				ci.typ = t
			}
			if ri.Pred != "" {
				p, err := predOf(ri.Pred)
				if err != nil {
					return nil, err
				}
				ci.pred = p
			}
			for _, rv := range ri.Operands {
				v, err := resolve(rv)
				if err != nil {
					return nil, err
				}
				ci.operands = append(ci.operands, v)
			}
			if len(ri.PhiSources) > 0 {
				ci.phiSources = make(map[BlockID]Value, len(ri.PhiSources))
				for predStr, rv := range ri.PhiSources {
					var predID uint32
					if _, err := fmt.Sscanf(predStr, "%d", &predID); err != nil {
						return nil, fmt.Errorf("phi predecessor key %q: %w", predStr, err)
					}
					v, err := resolve(rv)
					if err != nil {
						return nil, err
					}
					ci.phiSources[BlockID(predID)] = v
				}
			}
			blk.instrs = append(blk.instrs, ci)
		}
		f.blocks = append(f.blocks, blk)
	}
	return f, nil
}

func typeOf(s string) (*types.DataType, error) {
	switch s {
	case "i32":
		return types.I32, nil
	case "i64", "ptr":
		return types.I64, nil
	case "f32":
		return types.F32, nil
	case "f64":
		return types.F64, nil
	default:
		return nil, fmt.Errorf("unknown type %q", s)
	}
}

func opcodeOf(s string) (Opcode, error) {
	switch s {
	case "const_int":
		return OpConstInt, nil
	case "const_float":
		return OpConstFloat, nil
	case "add":
		return OpAdd, nil
	case "sub":
		return OpSub, nil
	case "mul":
		return OpMul, nil
	case "sdiv":
		return OpSDiv, nil
	case "udiv":
		return OpUDiv, nil
	case "and":
		return OpAnd, nil
	case "or":
		return OpOr, nil
	case "xor":
		return OpXor, nil
	case "shl":
		return OpShl, nil
	case "shr":
		return OpShr, nil
	case "icmp":
		return OpICmp, nil
	case "load":
		return OpLoad, nil
	case "store":
		return OpStore, nil
	case "alloca":
		return OpAlloca, nil
	case "call":
		return OpCall, nil
	case "br":
		return OpBr, nil
	case "condbr":
		return OpCondBr, nil
	case "ret":
		return OpRet, nil
	case "copy":
		return OpCopy, nil
	case "phi":
		return OpPhi, nil
	default:
		return OpInvalid, fmt.Errorf("unknown opcode %q", s)
	}
}

func predOf(s string) (Predicate, error) {
	switch s {
	case "eq":
		return PredEQ, nil
	case "ne":
		return PredNE, nil
	case "slt":
		return PredSLT, nil
	case "sle":
		return PredSLE, nil
	case "sgt":
		return PredSGT, nil
	case "sge":
		return PredSGE, nil
	case "ult":
		return PredULT, nil
	case "ule":
		return PredULE, nil
	case "ugt":
		return PredUGT, nil
	case "uge":
		return PredUGE, nil
	default:
		return PredInvalid, fmt.Errorf("unknown predicate %q", s)
	}
}

type concreteValue struct {
	typ *types.DataType
}

func (v *concreteValue) Type() *types.DataType { return v.typ }

type concreteInstr struct {
	concreteValue
	opcode     Opcode
	operands   []Value
	pred       Predicate
	intImm     int64
	floatImm   float32
	target     BlockID
	name       string
	phiSources map[BlockID]Value
}

func (i *concreteInstr) Opcode() Opcode                   { return i.opcode }
func (i *concreteInstr) Operands() []Value                { return i.operands }
func (i *concreteInstr) Predicate() Predicate              { return i.pred }
func (i *concreteInstr) IntImmediate() int64               { return i.intImm }
func (i *concreteInstr) FloatImmediate() float32           { return i.floatImm }
func (i *concreteInstr) Target() BlockID                   { return i.target }
func (i *concreteInstr) Name() string                      { return i.name }
func (i *concreteInstr) PhiSources() map[BlockID]Value      { return i.phiSources }

type concreteBlock struct {
	id     BlockID
	instrs []Instruction
}

func (b *concreteBlock) ID() BlockID                 { return b.id }
func (b *concreteBlock) Instructions() []Instruction { return b.instrs }

type concreteFunction struct {
	name   string
	params []Value
	blocks []Block
}

func (f *concreteFunction) Name() string    { return f.name }
func (f *concreteFunction) Params() []Value { return f.params }
func (f *concreteFunction) Blocks() []Block { return f.blocks }

type concreteModule struct {
	functions []Function
}

func (m *concreteModule) Functions() []Function { return m.functions }
