// Package pipeline sequences the backend stages before emission over one
// IR module, producing a fully lowered MIR module ready for internal/emit.
package pipeline

import (
	"fmt"

	"github.com/nkucc/mirbackend/internal/diag"
	"github.com/nkucc/mirbackend/internal/frame"
	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/isel"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/phielim"
	"github.com/nkucc/mirbackend/internal/regalloc"
	"github.com/nkucc/mirbackend/internal/target"
	"github.com/sirupsen/logrus"
)

// Run lowers every function of mod through DAG build/legalize/isel, CFG
// build, φ elimination, register allocation, and frame lowering, in that
// order. It aborts on the first fatal error;
// this module does not attempt partial compilation.
func Run(mod ir.Module, opts Options) (*mir.Module, error) {
	if opts.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	bt, ok := target.Lookup(opts.Target)
	if !ok {
		return nil, fmt.Errorf("pipeline: unknown target %q (registered: %v)", opts.Target, target.Names())
	}
	allocator := regalloc.New(opts.RAStrategy)

	out := mir.NewModule("module")
	for _, irFn := range mod.Functions() {
		mf, err := lowerFunction(irFn, bt, allocator)
		if err != nil {
			return nil, err
		}
		out.AddFunction(mf)
	}
	return out, nil
}

func lowerFunction(irFn ir.Function, bt target.BackendTarget, allocator regalloc.Allocator) (*mir.Function, error) {
	mf := mir.NewFunction(irFn.Name())

	if err := isel.SelectFunction(irFn, mf, bt); err != nil {
		return nil, diag.MalformedIR(irFn.Name(), 0, "isel", "%v", err)
	}

	phielim.Run(mf, bt.Adapter())

	if err := allocator.Allocate(mf, bt.RegInfo(), bt.Adapter()); err != nil {
		return nil, diag.RegisterExhaustion(irFn.Name(), "regalloc", "%v", err)
	}

	frame.Lower(mf, bt)
	return mf, nil
}
