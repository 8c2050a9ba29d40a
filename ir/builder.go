package ir

import "fmt"

// Builder appends instructions to a basic block, wiring def-use edges and
// assigning fresh result names ("t0", "t1", ...). All IR construction goes
// through it; the operand slices of a built Instr are never mutated again,
// so the use edges stay stable.
type Builder struct {
	blk    *Block
	nextID int
}

// NewBuilder creates a Builder inserting into blk.
func NewBuilder(blk *Block) *Builder {
	return &Builder{blk: blk}
}

// SetBlock redirects insertion to another block of the same function.
func (b *Builder) SetBlock(blk *Block) { b.blk = blk }

func (b *Builder) insert(op Op, operands ...*Value) *Instr {
	in := &Instr{op: op, block: b.blk}
	for i, v := range operands {
		o := &Operand{user: in, index: i, value: v}
		in.operands = append(in.operands, o)
		v.uses = append(v.uses, o)
	}
	b.blk.Instrs = append(b.blk.Instrs, in)
	return in
}

func (b *Builder) addResult(in *Instr, typ *Type) *Value {
	v := &Value{
		name: fmt.Sprintf("t%d", b.nextID),
		typ:  typ,
		def:  in,
		num:  len(in.results),
	}
	b.nextID++
	in.results = append(in.results, v)
	return v
}

// =============================================================================
// Memory
// =============================================================================

// AllocStack reserves storage of type t. decl links the allocation to a
// declared variable, vi to a debug name annotation; both may be nil for
// compiler-introduced temporaries.
func (b *Builder) AllocStack(t *Type, decl *VarDecl, vi *DebugVar) *Value {
	in := b.insert(OpAllocStack)
	in.allocType = t
	in.decl = decl
	in.varInfo = vi
	return b.addResult(in, t)
}

// DeallocStack releases an alloc_stack address.
func (b *Builder) DeallocStack(addr *Value) *Instr {
	return b.insert(OpDeallocStack, addr)
}

// Store writes src to the address dest with the given ownership qualifier.
func (b *Builder) Store(src, dest *Value, kind StoreKind) *Instr {
	in := b.insert(OpStore, src, dest)
	in.storeKind = kind
	return in
}

// CopyAddr copies the value at src to dest. initDest marks the copy as
// destination-initializing.
func (b *Builder) CopyAddr(src, dest *Value, initDest bool) *Instr {
	in := b.insert(OpCopyAddr, src, dest)
	in.initDest = initDest
	return in
}

// Load reads the value stored at addr.
func (b *Builder) Load(addr *Value) *Value {
	return b.addResult(b.insert(OpLoad, addr), addr.Type())
}

// LoadBorrow reads the value at addr without copying it.
func (b *Builder) LoadBorrow(addr *Value) *Value {
	return b.addResult(b.insert(OpLoadBorrow, addr), addr.Type())
}

// BeginAccess opens a scoped access to addr.
func (b *Builder) BeginAccess(addr *Value) *Value {
	return b.addResult(b.insert(OpBeginAccess, addr), addr.Type())
}

// EndAccess closes a scoped access.
func (b *Builder) EndAccess(access *Value) *Instr {
	return b.insert(OpEndAccess, access)
}

// ProjectBox projects the payload address out of a box.
func (b *Builder) ProjectBox(box *Value) *Value {
	return b.addResult(b.insert(OpProjectBox, box), box.Type())
}

// =============================================================================
// Aggregate projections
// =============================================================================

// StructExtract extracts stored property index from a struct value. The
// operand must be struct-typed.
func (b *Builder) StructExtract(v *Value, index int) *Value {
	f := v.Type().Field(index)
	in := b.insert(OpStructExtract, v)
	in.index = index
	in.field = f.Decl
	return b.addResult(in, f.Type)
}

// StructElementAddr computes the address of stored property index. The
// operand must address a struct type.
func (b *Builder) StructElementAddr(v *Value, index int) *Value {
	f := v.Type().Field(index)
	in := b.insert(OpStructElementAddr, v)
	in.index = index
	in.field = f.Decl
	return b.addResult(in, f.Type)
}

// TupleExtract extracts tuple element index from a tuple value.
func (b *Builder) TupleExtract(v *Value, index int) *Value {
	in := b.insert(OpTupleExtract, v)
	in.index = index
	return b.addResult(in, v.Type().TupleElement(index))
}

// TupleElementAddr computes the address of tuple element index.
func (b *Builder) TupleElementAddr(v *Value, index int) *Value {
	in := b.insert(OpTupleElementAddr, v)
	in.index = index
	return b.addResult(in, v.Type().TupleElement(index))
}

// DestructureTuple splits a tuple value into one result per element.
func (b *Builder) DestructureTuple(v *Value) *Instr {
	in := b.insert(OpDestructureTuple, v)
	for i := 0; i < v.Type().NumTupleElements(); i++ {
		b.addResult(in, v.Type().TupleElement(i))
	}
	return in
}

// DestructureStruct splits a struct value into one result per stored
// property.
func (b *Builder) DestructureStruct(v *Value) *Instr {
	in := b.insert(OpDestructureStruct, v)
	for i := 0; i < v.Type().NumFields(); i++ {
		b.addResult(in, v.Type().Field(i).Type)
	}
	return in
}

// =============================================================================
// References
// =============================================================================

// GlobalAddr takes the address of a global variable.
func (b *Builder) GlobalAddr(g *GlobalInfo) *Value {
	in := b.insert(OpGlobalAddr)
	in.global = g
	return b.addResult(in, g.Type)
}

// RefElementAddr computes the address of stored property index inside a
// class instance.
func (b *Builder) RefElementAddr(obj *Value, index int) *Value {
	f := obj.Type().Field(index)
	in := b.insert(OpRefElementAddr, obj)
	in.index = index
	in.field = f.Decl
	return b.addResult(in, f.Type)
}

// OpenExistentialAddr unwraps a type-erased address.
func (b *Builder) OpenExistentialAddr(v *Value) *Value {
	return b.addResult(b.insert(OpOpenExistentialAddr, v), v.Type())
}

// =============================================================================
// Calls
// =============================================================================

// FunctionRef references a function directly.
func (b *Builder) FunctionRef(fi *FuncInfo) *Value {
	in := b.insert(OpFunctionRef)
	in.fn = fi
	return b.addResult(in, FunctionType(fi.Name))
}

// Method references a member of the value's type for dynamic dispatch.
func (b *Builder) Method(v *Value, member *FuncDecl) *Value {
	in := b.insert(OpMethod, v)
	in.member = member
	return b.addResult(in, FunctionType(member.Name))
}

// Apply calls callee with args, producing one result of the given type.
func (b *Builder) Apply(callee *Value, resultType *Type, args ...*Value) *Value {
	operands := append([]*Value{callee}, args...)
	return b.addResult(b.insert(OpApply, operands...), resultType)
}

// BeginApply starts a coroutine accessor call, producing the yielded value.
func (b *Builder) BeginApply(callee *Value, resultType *Type, args ...*Value) *Value {
	operands := append([]*Value{callee}, args...)
	return b.addResult(b.insert(OpBeginApply, operands...), resultType)
}

// PartialApply captures args over callee, producing a new function value.
func (b *Builder) PartialApply(callee *Value, resultType *Type, args ...*Value) *Value {
	operands := append([]*Value{callee}, args...)
	return b.addResult(b.insert(OpPartialApply, operands...), resultType)
}

// =============================================================================
// Ownership and conversions
// =============================================================================

func (b *Builder) passThrough(op Op, v *Value) *Value {
	return b.addResult(b.insert(op, v), v.Type())
}

// BeginBorrow begins a borrow scope over v.
func (b *Builder) BeginBorrow(v *Value) *Value { return b.passThrough(OpBeginBorrow, v) }

// CopyValue copies v.
func (b *Builder) CopyValue(v *Value) *Value { return b.passThrough(OpCopyValue, v) }

// ConvertFunction converts a function value between compatible signatures.
func (b *Builder) ConvertFunction(v *Value) *Value { return b.passThrough(OpConvertFunction, v) }

// MarkUninitialized wraps an address not yet known to be initialized.
func (b *Builder) MarkUninitialized(v *Value) *Value { return b.passThrough(OpMarkUninitialized, v) }

// MarkNoCopy marks a value as checked for copy avoidance.
func (b *Builder) MarkNoCopy(v *Value) *Value { return b.passThrough(OpMarkNoCopy, v) }

// WrapLinear converts a copyable value into its move-only wrapper.
func (b *Builder) WrapLinear(v *Value) *Value { return b.passThrough(OpWrapLinear, v) }

// UnwrapLinear converts a move-only wrapper back to its copyable form.
func (b *Builder) UnwrapLinear(v *Value) *Value { return b.passThrough(OpUnwrapLinear, v) }

// PointerToAddress converts a raw pointer into an address of the given type.
func (b *Builder) PointerToAddress(p *Value, resultType *Type) *Value {
	in := b.insert(OpPointerToAddress, p)
	in.allocType = resultType
	return b.addResult(in, resultType)
}

// AddressToPointer converts an address into a raw pointer, losing all
// provenance.
func (b *Builder) AddressToPointer(addr *Value) *Value {
	return b.addResult(b.insert(OpAddressToPointer, addr), PointerType("ptr"))
}

// =============================================================================
// Misc
// =============================================================================

// DebugValue attaches the debug-variable annotation vi to v.
func (b *Builder) DebugValue(v *Value, vi *DebugVar) *Instr {
	in := b.insert(OpDebugValue, v)
	in.varInfo = vi
	return in
}

// Const produces an unnamed literal of type t.
func (b *Builder) Const(t *Type) *Value {
	return b.addResult(b.insert(OpConst), t)
}

// Branch terminates the block with an unconditional branch.
func (b *Builder) Branch() *Instr { return b.insert(OpBranch) }

// Return terminates the function.
func (b *Builder) Return(results ...*Value) *Instr {
	return b.insert(OpReturn, results...)
}
