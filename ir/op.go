package ir

import "fmt"

// Op identifies the operation an Instr performs. The set is closed: every
// switch over Op in this module lists each member explicitly so that adding
// an operation forces a decision at every dispatch site.
type Op int

const (
	OpInvalid Op = iota

	// Memory.
	OpAllocStack
	OpDeallocStack
	OpStore
	OpCopyAddr
	OpLoad
	OpLoadBorrow
	OpBeginAccess
	OpEndAccess
	OpProjectBox

	// Aggregate projections and decompositions.
	OpStructExtract
	OpStructElementAddr
	OpTupleExtract
	OpTupleElementAddr
	OpDestructureTuple
	OpDestructureStruct

	// References.
	OpGlobalAddr
	OpRefElementAddr
	OpOpenExistentialAddr

	// Calls.
	OpFunctionRef
	OpMethod
	OpApply
	OpBeginApply
	OpPartialApply

	// Ownership and conversions.
	OpBeginBorrow
	OpCopyValue
	OpConvertFunction
	OpMarkUninitialized
	OpMarkNoCopy
	OpWrapLinear
	OpUnwrapLinear
	OpPointerToAddress
	OpAddressToPointer

	// Misc.
	OpDebugValue
	OpConst
	OpBranch
	OpReturn
)

var opNames = map[Op]string{
	OpAllocStack:          "alloc_stack",
	OpDeallocStack:        "dealloc_stack",
	OpStore:               "store",
	OpCopyAddr:            "copy_addr",
	OpLoad:                "load",
	OpLoadBorrow:          "load_borrow",
	OpBeginAccess:         "begin_access",
	OpEndAccess:           "end_access",
	OpProjectBox:          "project_box",
	OpStructExtract:       "struct_extract",
	OpStructElementAddr:   "struct_element_addr",
	OpTupleExtract:        "tuple_extract",
	OpTupleElementAddr:    "tuple_element_addr",
	OpDestructureTuple:    "destructure_tuple",
	OpDestructureStruct:   "destructure_struct",
	OpGlobalAddr:          "global_addr",
	OpRefElementAddr:      "ref_element_addr",
	OpOpenExistentialAddr: "open_existential_addr",
	OpFunctionRef:         "function_ref",
	OpMethod:              "method",
	OpApply:               "apply",
	OpBeginApply:          "begin_apply",
	OpPartialApply:        "partial_apply",
	OpBeginBorrow:         "begin_borrow",
	OpCopyValue:           "copy_value",
	OpConvertFunction:     "convert_function",
	OpMarkUninitialized:   "mark_uninitialized",
	OpMarkNoCopy:          "mark_no_copy",
	OpWrapLinear:          "wrap_linear",
	OpUnwrapLinear:        "unwrap_linear",
	OpPointerToAddress:    "pointer_to_address",
	OpAddressToPointer:    "address_to_pointer",
	OpDebugValue:          "debug_value",
	OpConst:               "const",
	OpBranch:              "br",
	OpReturn:              "ret",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("invalid(%d)", int(op))
}

// MayWriteToMemory reports whether an instruction of this kind can store
// through an address operand. Call sites are writers because callees may
// mutate address arguments. This is an instruction-level property: a
// copy_addr counts even when the address of interest is only its source.
func (op Op) MayWriteToMemory() bool {
	switch op {
	case OpStore, OpCopyAddr, OpApply, OpBeginApply, OpPartialApply:
		return true
	case OpInvalid, OpAllocStack, OpDeallocStack, OpLoad, OpLoadBorrow,
		OpBeginAccess, OpEndAccess, OpProjectBox,
		OpStructExtract, OpStructElementAddr, OpTupleExtract, OpTupleElementAddr,
		OpDestructureTuple, OpDestructureStruct,
		OpGlobalAddr, OpRefElementAddr, OpOpenExistentialAddr,
		OpFunctionRef, OpMethod,
		OpBeginBorrow, OpCopyValue, OpConvertFunction, OpMarkUninitialized,
		OpMarkNoCopy, OpWrapLinear, OpUnwrapLinear,
		OpPointerToAddress, OpAddressToPointer,
		OpDebugValue, OpConst, OpBranch, OpReturn:
		return false
	}
	return false
}

// IsCallSite reports whether the instruction kind applies a callee to
// arguments (operand 0 is the callee value, the rest are arguments).
func (op Op) IsCallSite() bool {
	switch op {
	case OpApply, OpBeginApply, OpPartialApply:
		return true
	default:
		return false
	}
}

// projectsAddress reports whether the instruction forwards its address
// operand to its result, so that uses of the result are transitively uses of
// the operand. Consumed by WalkAddressUses.
func (op Op) projectsAddress() bool {
	switch op {
	case OpStructElementAddr, OpTupleElementAddr, OpRefElementAddr,
		OpOpenExistentialAddr, OpBeginAccess, OpProjectBox,
		OpMarkUninitialized, OpMarkNoCopy, OpWrapLinear, OpUnwrapLinear:
		return true
	default:
		return false
	}
}
