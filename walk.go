package varname

import (
	"go.uber.org/zap"

	"github.com/mirlang/varname/ir"
)

// =============================================================================
// Backward Name-Path Walker
//
// findRoot repeatedly applies structural rules to move from the target
// value toward a named root, appending path components as it crosses
// projections. Rules are tried in order and the first match wins; when a
// rule's own sub-condition fails, the later rules still get their turn.
// Running out of rules is a terminal failure.
// =============================================================================

func (inf *Inferrer) push(c pathComponent) {
	inf.path = append(inf.path, c)
}

func (inf *Inferrer) findRoot(search *ir.Value) *ir.Value {
	for {
		inf.log.Debug("walk step", zap.String("value", search.Name()))

		def := search.DefiningInstr()

		// Allocations either carry variable info directly or are
		// temporaries whose initializing writes we can see through.
		if def != nil && def.Op() == ir.OpAllocStack {
			if !allocHasInfo(def) {
				if v := inf.rootForTemporaryAllocation(def); v != nil {
					search = v
					continue
				}
				return nil
			}
			inf.push(pathComponent{instr: def})
			return search
		}

		if def != nil && def.Op() == ir.OpGlobalAddr {
			inf.push(pathComponent{instr: def})
			return search
		}

		// Type-erasure unwrap is transparent.
		if def != nil && def.Op() == ir.OpOpenExistentialAddr {
			search = def.Operand(0)
			continue
		}

		if def != nil && def.Op() == ir.OpRefElementAddr {
			inf.push(pathComponent{instr: def})
			search = def.Operand(0)
			continue
		}

		if def != nil {
			switch def.Op() {
			case ir.OpStructExtract, ir.OpStructElementAddr,
				ir.OpTupleExtract, ir.OpTupleElementAddr:
				inf.push(pathComponent{instr: def})
				search = def.Operand(0)
				continue
			}
		}

		if def != nil && (def.Op() == ir.OpDestructureTuple || def.Op() == ir.OpDestructureStruct) {
			// Record the result value itself, not the instruction, so
			// rendering can recover which element this was.
			inf.push(pathComponent{value: search})
			search = def.Operand(0)
			continue
		}

		if arg := search.Arg(); arg != nil && arg.Decl != nil {
			inf.push(pathComponent{value: search})
			return search
		}

		// Read or modify accessor coroutine.
		if def != nil && def.Op() == ir.OpBeginApply {
			if self := inf.calleeSelf(def); self != nil {
				search = self
				continue
			}
		}

		if inf.opts&InferSelfThroughAllAccessors != 0 {
			if def != nil && (def.Op() == ir.OpApply || def.Op() == ir.OpBeginApply) {
				if self := inf.calleeSelf(def); self != nil {
					search = self
					continue
				}
			}
		}

		// Addressor accessor: the addressor yields either the raw
		// pointer itself or a wrapper struct holding it.
		if ptrDef := stripAccessMarkers(search).DefiningInstr(); ptrDef != nil &&
			ptrDef.Op() == ir.OpPointerToAddress {
			inner := ptrDef.Operand(0).DefiningInstr()
			if inner != nil && inner.Op() == ir.OpStructExtract {
				inner = inner.Operand(0).DefiningInstr()
			}
			if inner != nil && inner.Op() == ir.OpApply {
				if self := inf.calleeSelf(inner); self != nil {
					search = self
					continue
				}
			}
		}

		// Function conversion thunk: a partial application forwarding
		// one function-typed capture is transparent.
		if def != nil && def.Op() == ir.OpPartialApply {
			if fi := def.CalleeFunc(); fi != nil && fi.IsThunk && def.NumArgs() == 1 {
				if arg := def.CallArg(0); arg.Type().IsFunction() {
					search = arg
					continue
				}
			}
		}

		// A debug annotation naming this exact value ends the walk.
		if use := anyDebugUse(search); use != nil {
			inf.push(pathComponent{instr: use.User()})
			// The root is the value, not the annotation.
			return search
		}

		if def != nil && isPassThrough(def.Op()) {
			search = def.Operand(0)
			continue
		}

		// Nothing matched: refuse to guess.
		return nil
	}
}

// calleeSelf checks that the call site's callee is a direct function or
// member reference with a receiver parameter. On a match it records the
// callee instruction on the path and returns the receiver argument;
// otherwise it returns nil and records nothing.
func (inf *Inferrer) calleeSelf(call *ir.Instr) *ir.Value {
	calleeDef := call.Callee().DefiningInstr()
	if calleeDef == nil {
		return nil
	}
	switch calleeDef.Op() {
	case ir.OpFunctionRef, ir.OpMethod:
	default:
		return nil
	}
	// Receiver metadata on a call with no arguments is inconsistent IR;
	// SelfArg would alias the callee operand.
	if !call.CalleeHasSelf() || call.NumArgs() == 0 {
		return nil
	}
	inf.push(pathComponent{instr: calleeDef})
	return call.SelfArg()
}

// allocHasInfo reports whether the allocation itself names a variable,
// either through a declaration link or a debug annotation.
func allocHasInfo(alloc *ir.Instr) bool {
	if alloc.Decl() != nil {
		return true
	}
	vi := alloc.VarInfo()
	return vi != nil && vi.Name != ""
}

// anyDebugUse returns some debug-annotation use of v, or nil.
func anyDebugUse(v *ir.Value) *ir.Operand {
	for _, use := range v.Uses() {
		if use.User().Op() == ir.OpDebugValue && use.User().VarInfo() != nil {
			return use
		}
	}
	return nil
}

// stripAccessMarkers looks through scoped-access begins.
func stripAccessMarkers(v *ir.Value) *ir.Value {
	for {
		def := v.DefiningInstr()
		if def == nil || def.Op() != ir.OpBeginAccess {
			return v
		}
		v = def.Operand(0)
	}
}

// isPassThrough reports whether the op forwards its sole operand without
// changing what variable the value denotes.
func isPassThrough(op ir.Op) bool {
	switch op {
	case ir.OpBeginBorrow, ir.OpLoad, ir.OpLoadBorrow, ir.OpBeginAccess,
		ir.OpMarkNoCopy, ir.OpProjectBox, ir.OpCopyValue,
		ir.OpConvertFunction, ir.OpMarkUninitialized,
		ir.OpWrapLinear, ir.OpUnwrapLinear:
		return true
	default:
		return false
	}
}
