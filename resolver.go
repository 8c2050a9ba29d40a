package varname

import (
	"go.uber.org/zap"

	"github.com/mirlang/varname/ir"
)

// =============================================================================
// Temporary-Allocation Root Resolver
//
// An allocation without name metadata may still be a temporary that some
// named value was stored into. The resolver scans the allocation's writes
// in program order, confined to the allocation's own block, and recovers
// the stored value when the write pattern is one it fully understands.
// Anything else fails: a wrong name is worse than no name.
// =============================================================================

// rootForTemporaryAllocation recovers the value that initialized a nameless
// temporary allocation, or nil when the writes cannot be fully understood.
func (inf *Inferrer) rootForTemporaryAllocation(alloc *ir.Instr) *ir.Value {
	writes, ok := inf.collectWrites(alloc)
	if !ok {
		inf.log.Debug("address-use walk incomplete", zap.String("alloc", alloc.Result(0).Name()))
		return nil
	}

	if alloc.AllocatedType().IsTuple() {
		return inf.tupleAllocationRoot(alloc, writes)
	}
	return inf.scalarAllocationRoot(alloc, writes)
}

// scalarAllocationRoot handles non-tuple temporaries. The first write found
// must initialize the entire allocation: either a destination-initializing
// copy_addr into the allocation itself, or a non-assigning store to it.
func (inf *Inferrer) scalarAllocationRoot(alloc *ir.Instr, writes writeSet) *ir.Value {
	addr := alloc.Result(0)
	for _, in := range alloc.Block().InstrsFrom(alloc) {
		if !writes[in] {
			continue
		}

		if in.Op() == ir.OpCopyAddr && in.Dest() == addr && in.InitializesDest() {
			return in.Src()
		}

		if in.Op() == ir.OpStore && in.Dest() == addr && in.StoreKind() != ir.StoreAssign {
			return in.Src()
		}

		// A write we do not understand: give up rather than guess.
		break
	}
	return nil
}

// tupleAllocationRoot handles tuple-typed temporaries initialized one
// element at a time. Two shapes are recognized, and they must not mix:
//
//   - copy_addr [init] from a matching-index tuple_element_addr of one
//     other address R into a tuple_element_addr of the allocation; every
//     element must project the same R
//   - store [init] of result i of a single destructure_tuple D into the
//     tuple_element_addr for element i; every element must come from D
//
// Resolution requires total coverage: each index in [0, N) assigned exactly
// once before any write we do not understand. On success the root is D's
// aggregate operand, or R itself.
func (inf *Inferrer) tupleAllocationRoot(alloc *ir.Instr, writes writeSet) *ir.Value {
	addr := alloc.Result(0)
	n := alloc.AllocatedType().NumTupleElements()
	if n == 0 {
		return nil
	}

	elems := make([]*ir.Value, n)
	left := n

	var foundDestructure *ir.Instr
	var foundRootAddress *ir.Value

	for _, in := range alloc.Block().InstrsFrom(alloc) {
		if !writes[in] {
			continue
		}

		if in.Op() == ir.OpCopyAddr && in.InitializesDest() {
			if dst := in.Dest().DefiningInstr(); dst != nil &&
				dst.Op() == ir.OpTupleElementAddr && dst.Operand(0) == addr {
				if src := in.Src().DefiningInstr(); src != nil && src.Op() == ir.OpTupleElementAddr {
					// A mix of destructure- and projection-based
					// writes is not a pattern we recognize.
					if foundDestructure != nil {
						return nil
					}

					// All elements must project out of one and the
					// same source address.
					switch {
					case foundRootAddress == nil:
						foundRootAddress = src.Operand(0)
					case foundRootAddress != src.Operand(0):
						return nil
					}

					i := dst.Index()
					if i != src.Index() {
						return nil
					}
					if i < 0 || i >= n || elems[i] != nil {
						return nil
					}
					elems[i] = src.Result(0)

					left--
					if left == 0 {
						break
					}
					continue
				}
			}
		}

		if in.Op() == ir.OpStore && in.StoreKind() != ir.StoreAssign {
			if dst := in.Dest().DefiningInstr(); dst != nil &&
				dst.Op() == ir.OpTupleElementAddr && dst.Operand(0) == addr {
				if src := in.Src().DefiningInstr(); src != nil && src.Op() == ir.OpDestructureTuple {
					if foundRootAddress != nil {
						return nil
					}

					switch {
					case foundDestructure == nil:
						foundDestructure = src
					case foundDestructure != src:
						return nil
					}

					i := dst.Index()
					if i != in.Src().ResultIndex() {
						return nil
					}
					if i < 0 || i >= n || elems[i] != nil {
						return nil
					}
					elems[i] = in.Src()

					left--
					if left == 0 {
						break
					}
					continue
				}
			}
		}

		// A write we do not understand aborts the whole resolution,
		// even when it might be unrelated to the remaining elements.
		break
	}

	if left != 0 {
		return nil
	}
	if foundDestructure != nil {
		return foundDestructure.Operand(0)
	}
	if foundRootAddress != nil {
		return foundRootAddress
	}
	return nil
}
