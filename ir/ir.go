// Package ir defines the mid-level intermediate representation consumed by
// name inference: a def-use graph of values produced by instructions tagged
// with a closed operation set.
//
// The package contains:
//   - Value / Operand / Instr / Block / Function: the def-use graph itself
//   - Op: the closed operation enum with effect/shape predicates
//   - Type and the declaration records (VarDecl, FuncDecl, DebugVar, ...)
//   - Builder: construction API preserving def-use wiring invariants
//   - WalkAddressUses: transitive address-use traversal
//
// The graph is read-only once built; analyses never mutate it.
package ir

// StoreKind is the ownership qualifier of a store instruction.
type StoreKind int

const (
	// StoreInit initializes previously uninitialized memory.
	StoreInit StoreKind = iota
	// StoreAssign overwrites an already initialized location.
	StoreAssign
)

func (k StoreKind) String() string {
	if k == StoreAssign {
		return "assign"
	}
	return "init"
}

// =============================================================================
// Value
// =============================================================================

// ArgInfo identifies a value that enters a function as an argument rather
// than being produced by an instruction.
type ArgInfo struct {
	Func  *Function
	Index int
	Decl  *VarDecl // declared parameter, nil when compiler-synthesized
}

// Value is a single definition point in the def-use graph. A value is either
// one result of its defining instruction or a function argument; exactly one
// of DefiningInstr and Arg is non-nil.
type Value struct {
	name string
	typ  *Type
	def  *Instr
	num  int // result index within def
	arg  *ArgInfo
	uses []*Operand
}

// Name returns the value's display name (e.g. "t3").
func (v *Value) Name() string { return v.name }

// SetName assigns the display name.
func (v *Value) SetName(name string) { v.name = name }

// Type returns the value's static type.
func (v *Value) Type() *Type { return v.typ }

// DefiningInstr returns the instruction producing this value, or nil for
// function arguments.
func (v *Value) DefiningInstr() *Instr { return v.def }

// ResultIndex returns which result of the defining instruction this value
// is. Zero for arguments and single-result instructions.
func (v *Value) ResultIndex() int { return v.num }

// Arg returns argument metadata, or nil for instruction results.
func (v *Value) Arg() *ArgInfo { return v.arg }

// Uses returns every operand consuming this value, in insertion order.
func (v *Value) Uses() []*Operand { return v.uses }

// =============================================================================
// Operand
// =============================================================================

// Operand is a consuming edge from an instruction to a value.
type Operand struct {
	user  *Instr
	index int
	value *Value
}

// User returns the consuming instruction.
func (o *Operand) User() *Instr { return o.user }

// Index returns the operand's position within the user's operand list.
func (o *Operand) Index() int { return o.index }

// Value returns the consumed value.
func (o *Operand) Value() *Value { return o.value }

// =============================================================================
// Instr
// =============================================================================

// Instr is a single IR operation. The op tag selects which attribute fields
// are meaningful; all construction goes through Builder, which keeps the
// operand/use edges consistent.
type Instr struct {
	op       Op
	block    *Block
	operands []*Operand
	results  []*Value

	allocType *Type       // alloc_stack, pointer_to_address result type
	index     int         // tuple_extract / tuple_element_addr element index
	field     *VarDecl    // struct projections, ref_element_addr
	member    *FuncDecl   // method
	fn        *FuncInfo   // function_ref
	global    *GlobalInfo // global_addr
	varInfo   *DebugVar   // alloc_stack, debug_value name annotation
	decl      *VarDecl    // alloc_stack declared-variable link
	initDest  bool        // copy_addr destination-initializing flag
	storeKind StoreKind   // store ownership qualifier
}

// Op returns the operation tag.
func (in *Instr) Op() Op { return in.op }

// Block returns the basic block containing the instruction.
func (in *Instr) Block() *Block { return in.block }

// NumOperands returns the number of consumed values.
func (in *Instr) NumOperands() int { return len(in.operands) }

// Operand returns the value consumed at position i.
func (in *Instr) Operand(i int) *Value { return in.operands[i].value }

// Operands returns the instruction's consuming edges.
func (in *Instr) Operands() []*Operand { return in.operands }

// Results returns the values the instruction defines.
func (in *Instr) Results() []*Value { return in.results }

// Result returns result i.
func (in *Instr) Result(i int) *Value { return in.results[i] }

// AllocatedType returns the storage type of an alloc_stack, or the result
// type of a pointer_to_address.
func (in *Instr) AllocatedType() *Type { return in.allocType }

// Index returns the element index of a tuple projection.
func (in *Instr) Index() int { return in.index }

// Field returns the stored-property declaration of a struct projection or
// ref_element_addr.
func (in *Instr) Field() *VarDecl { return in.field }

// Member returns the member declaration of a method instruction.
func (in *Instr) Member() *FuncDecl { return in.member }

// Func returns the function a function_ref references.
func (in *Instr) Func() *FuncInfo { return in.fn }

// Global returns the global a global_addr addresses.
func (in *Instr) Global() *GlobalInfo { return in.global }

// VarInfo returns the attached debug-variable annotation, if any.
func (in *Instr) VarInfo() *DebugVar { return in.varInfo }

// Decl returns the declared variable an allocation is storage for, if any.
func (in *Instr) Decl() *VarDecl { return in.decl }

// InitializesDest reports whether a copy_addr initializes its destination.
func (in *Instr) InitializesDest() bool { return in.initDest }

// StoreKind returns the ownership qualifier of a store.
func (in *Instr) StoreKind() StoreKind { return in.storeKind }

// MayWriteToMemory reports whether the instruction can store through an
// address operand.
func (in *Instr) MayWriteToMemory() bool { return in.op.MayWriteToMemory() }

// Src returns the source value of a store or copy_addr.
func (in *Instr) Src() *Value { return in.Operand(0) }

// Dest returns the destination address of a store or copy_addr.
func (in *Instr) Dest() *Value { return in.Operand(1) }

// =============================================================================
// Call-site helpers
// =============================================================================

// Callee returns the callee value of a call-site instruction (operand 0).
func (in *Instr) Callee() *Value { return in.Operand(0) }

// NumArgs returns the number of call arguments, excluding the callee.
func (in *Instr) NumArgs() int { return len(in.operands) - 1 }

// CallArg returns call argument i (0-based, excluding the callee).
func (in *Instr) CallArg(i int) *Value { return in.Operand(i + 1) }

// SelfArg returns the receiver argument of a call site. By convention self
// is passed last.
func (in *Instr) SelfArg() *Value { return in.Operand(len(in.operands) - 1) }

// CalleeFunc resolves the callee through a function_ref, returning nil when
// the callee is anything else.
func (in *Instr) CalleeFunc() *FuncInfo {
	def := in.Callee().DefiningInstr()
	if def == nil || def.op != OpFunctionRef {
		return nil
	}
	return def.fn
}

// CalleeHasSelf reports whether the call site's callee signature carries a
// receiver parameter. Only direct callees (function_ref or method) can
// answer this; indirect callees report false.
func (in *Instr) CalleeHasSelf() bool {
	def := in.Callee().DefiningInstr()
	if def == nil {
		return false
	}
	switch def.op {
	case OpFunctionRef:
		return def.fn != nil && def.fn.HasSelf
	case OpMethod:
		return def.member != nil && def.member.HasSelf
	default:
		return false
	}
}

// =============================================================================
// Block / Function
// =============================================================================

// Block is a basic block: an ordered instruction list. Program order within
// a block is the slice order.
type Block struct {
	fn     *Function
	Instrs []*Instr
}

// Parent returns the enclosing function.
func (b *Block) Parent() *Function { return b.fn }

// InstrsFrom returns the block suffix starting at start, inclusive, or nil
// when start is not in this block.
func (b *Block) InstrsFrom(start *Instr) []*Instr {
	for i, in := range b.Instrs {
		if in == start {
			return b.Instrs[i:]
		}
	}
	return nil
}

// Function owns its blocks and argument values.
type Function struct {
	Name   string
	Params []*Value
	Blocks []*Block
}

// NewFunction creates an empty function.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// AddParam appends a function argument. decl may be nil for synthesized
// arguments.
func (f *Function) AddParam(name string, typ *Type, decl *VarDecl) *Value {
	v := &Value{
		name: name,
		typ:  typ,
		arg:  &ArgInfo{Func: f, Index: len(f.Params), Decl: decl},
	}
	f.Params = append(f.Params, v)
	return v
}

// NewBlock appends an empty basic block.
func (f *Function) NewBlock() *Block {
	b := &Block{fn: f}
	f.Blocks = append(f.Blocks, b)
	return b
}
