// Package varname reconstructs human-meaningful access-path names for IR
// values.
//
// Diagnostics want to talk about program variables, but most values flowing
// through the mid-level IR are synthetic: temporaries, copies, tuple and
// struct decompositions, accessor-call results. Given such a value, this
// package walks backward through its definition chain until it reaches a
// value that carries name metadata (a declared variable, a function
// parameter, or a global), collecting the projections crossed on the way,
// and renders them as a dot-separated access path like "self.bar.foo".
//
// The package contains:
//   - Inferrer: the backward walker over structural rules
//   - the temporary-allocation root resolver (scalar and tuple forms)
//   - the address write classifier over an injected AddressUseWalker
//   - the name renderer draining the collected path root-first
//
// Inference is fail-closed: any unrecognized, incomplete, or conflicting
// structure yields no root and an empty name, never a best-effort guess.
package varname

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mirlang/varname/ir"
)

// Options configures optional inference behavior.
type Options uint32

const (
	// InferSelfThroughAllAccessors makes the walker treat the receiver of
	// any direct call as traceable, not only coroutine accessor calls.
	InferSelfThroughAllAccessors Options = 1 << iota
)

// pathComponent is one step of the discovered name path: either the
// instruction that crossed a projection, or the exact value whose result
// index identifies an element of a decomposition.
type pathComponent struct {
	instr *ir.Instr
	value *ir.Value
}

// Inferrer performs name inference. It may be reused across calls; the name
// path buffer is scoped to a single Infer call and drained before it
// returns. An Inferrer is not safe for concurrent use.
type Inferrer struct {
	opts   Options
	walker AddressUseWalker
	log    *zap.Logger
	path   []pathComponent
}

// NewInferrer creates an Inferrer. A nil walker selects the IR package's
// transitive address-use walk; a nil logger disables step tracing.
func NewInferrer(walker AddressUseWalker, opts Options, logger *zap.Logger) *Inferrer {
	if walker == nil {
		walker = WalkerFunc(ir.WalkAddressUses)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inferrer{opts: opts, walker: walker, log: logger}
}

// Infer walks backward from v to a named root. It returns the root value
// and the rendered access path, or (nil, "") when no root could be
// established. A nil v yields no root.
func (inf *Inferrer) Infer(v *ir.Value) (*ir.Value, string) {
	if v == nil {
		return nil, ""
	}

	inf.path = inf.path[:0]
	root := inf.findRoot(v)
	if root == nil {
		inf.path = inf.path[:0]
		inf.log.Debug("no root found", zap.String("value", v.Name()))
		return nil, ""
	}

	name := inf.drainPath()
	inf.log.Debug("inferred name",
		zap.String("value", v.Name()),
		zap.String("name", name),
		zap.String("root", root.Name()))
	return root, name
}

// Infer runs a one-shot inference with default collaborators.
func Infer(v *ir.Value, opts Options) (*ir.Value, string) {
	return NewInferrer(nil, opts, nil).Infer(v)
}

// Fprint writes the inference outcome for v in the diagnostic query format:
// the input value, then the name and root, or the literal "unknown" for
// both when inference failed. Purely diagnostic, not a stable format.
func (inf *Inferrer) Fprint(w io.Writer, v *ir.Value) {
	root, name := inf.Infer(v)
	fmt.Fprintf(w, "Input Value: %s\n", v)
	if root == nil {
		fmt.Fprint(w, "Name: 'unknown'\nRoot: 'unknown'\n")
		return
	}
	fmt.Fprintf(w, "Name: '%s'\nRoot: %s\n", name, root)
}

// Fprint runs a one-shot diagnostic dump with default collaborators.
func Fprint(w io.Writer, v *ir.Value, opts Options) {
	NewInferrer(nil, opts, nil).Fprint(w, v)
}
