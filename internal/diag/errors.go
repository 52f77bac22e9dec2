// Package diag implements the error taxonomy: recoverable, reportable
// failure kinds are returned as typed errors, while internal invariant
// violations stay panics carrying a "BUG: " prefix. Every Fatal is logged
// once, structured, before it is returned.
package diag

import (
	"fmt"

	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/sirupsen/logrus"
)

// Kind classifies a Fatal.
type Kind uint8

const (
	// MalformedIR covers predecessor/φ disagreement, a missing terminator,
	// or a use of an undefined virtual register.
	MalformedIR Kind = iota
	// UnsupportedOperation covers a DAG opcode the target cannot lower.
	UnsupportedOperation
	// RegisterClassExhausted covers a mandatory live-through at a call
	// with no physical register and an empty reserved pool left to spill
	// into.
	RegisterClassExhausted
)

func (k Kind) String() string {
	switch k {
	case MalformedIR:
		return "malformed-ir"
	case UnsupportedOperation:
		return "unsupported-operation"
	case RegisterClassExhausted:
		return "register-class-exhausted"
	default:
		return "unknown"
	}
}

// Fatal is a compilation-aborting error naming the function, block, and
// pipeline stage where it was raised.
type Fatal struct {
	Kind     Kind
	Function string
	Block    mir.BlockID
	HasBlock bool
	Stage    string
	Msg      string
}

func (f *Fatal) Error() string {
	if f.HasBlock {
		return fmt.Sprintf("%s: %s (function %s, block %d, stage %s)", f.Kind, f.Msg, f.Function, f.Block, f.Stage)
	}
	return fmt.Sprintf("%s: %s (function %s, stage %s)", f.Kind, f.Msg, f.Function, f.Stage)
}

func log(f *Fatal) {
	entry := logrus.WithFields(logrus.Fields{
		"func":  f.Function,
		"stage": f.Stage,
		"kind":  f.Kind.String(),
	})
	if f.HasBlock {
		entry = entry.WithField("block", f.Block)
	}
	entry.Error(f.Msg)
}

// MalformedIR reports a Malformed IR fatal scoped to a function and block.
func MalformedIR(function string, block mir.BlockID, stage, msg string, args ...any) error {
	f := &Fatal{Kind: MalformedIR, Function: function, Block: block, HasBlock: true, Stage: stage, Msg: fmt.Sprintf(msg, args...)}
	log(f)
	return f
}

// UnsupportedOp reports an Unsupported operation fatal for function at stage.
func UnsupportedOp(function, stage, msg string, args ...any) error {
	f := &Fatal{Kind: UnsupportedOperation, Function: function, Stage: stage, Msg: fmt.Sprintf(msg, args...)}
	log(f)
	return f
}

// RegisterExhaustion reports a register class exhaustion fatal — raised
// only when the reserved scratch pool is itself empty; otherwise the
// scratch register absorbs the pressure and allocation proceeds.
func RegisterExhaustion(function, stage, msg string, args ...any) error {
	f := &Fatal{Kind: RegisterClassExhausted, Function: function, Stage: stage, Msg: fmt.Sprintf(msg, args...)}
	log(f)
	return f
}

// InternalInvariant logs and panics with a "BUG: " prefix for invariants
// that should be structurally impossible to violate (duplicate edges, a
// missing block, a stale CFG). It never returns.
func InternalInvariant(function, stage, msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	logrus.WithFields(logrus.Fields{"func": function, "stage": stage, "kind": "internal-invariant"}).Error(formatted)
	panic("BUG: " + formatted)
}
