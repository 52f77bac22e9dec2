package mir

import "github.com/nkucc/mirbackend/internal/types"

// GlobalVariable has name, DataType, shape (dims=[] => scalar), and
// initializer values.
type GlobalVariable struct {
	Name        string
	Type        *types.DataType
	Dims        []int
	Initializer []Operand
}

func (g *GlobalVariable) IsScalar() bool { return len(g.Dims) == 0 }

// Module lists Functions and GlobalVariables.
type Module struct {
	Name      string
	Functions []*Function
	Globals   []*GlobalVariable
}

func NewModule(name string) *Module {
	return &Module{Name: name}
}

func (m *Module) AddFunction(f *Function) { m.Functions = append(m.Functions, f) }
func (m *Module) AddGlobal(g *GlobalVariable) { m.Globals = append(m.Globals, g) }
