package varname

import "github.com/mirlang/varname/ir"

// =============================================================================
// Address Write Classifier
// =============================================================================

// AddressUseWalker is the injected capability for enumerating every
// transitive use of an address (through projections, casts, and access
// markers) exactly once. Implementations must report AddressUseUnknown when
// any use could not be classified; a silently partial walk is not an option.
// The default is ir.WalkAddressUses; the aliasing logic lives there, not in
// this package.
type AddressUseWalker interface {
	WalkUses(root *ir.Value, visit func(*ir.Operand)) ir.AddressUseKind
}

// WalkerFunc adapts a plain function to AddressUseWalker.
type WalkerFunc func(root *ir.Value, visit func(*ir.Operand)) ir.AddressUseKind

// WalkUses calls f.
func (f WalkerFunc) WalkUses(root *ir.Value, visit func(*ir.Operand)) ir.AddressUseKind {
	return f(root, visit)
}

// writeSet is the set of instructions that may write to an allocation or
// any projection of it.
type writeSet map[*ir.Instr]bool

// collectWrites classifies every transitive use of the allocation's address
// and gathers the instructions that may write through it. It reports false
// when the walk could not classify some use; the partial set must then be
// discarded.
func (inf *Inferrer) collectWrites(alloc *ir.Instr) (writeSet, bool) {
	writes := make(writeSet)
	kind := inf.walker.WalkUses(alloc.Result(0), func(use *ir.Operand) {
		if use.User().MayWriteToMemory() {
			writes[use.User()] = true
		}
	})
	if kind != ir.AddressUseComplete {
		return nil, false
	}
	return writes, true
}
