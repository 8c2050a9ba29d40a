package varname

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mirlang/varname/ir"
)

// =============================================================================
// Test IR scaffolding
// =============================================================================

var (
	intT    = ir.OpaqueType("Int")
	stringT = ir.OpaqueType("String")
)

func newTestBlock() (*ir.Function, *ir.Builder) {
	fn := ir.NewFunction("test")
	return fn, ir.NewBuilder(fn.NewBlock())
}

func namedParam(fn *ir.Function, name string, typ *ir.Type) *ir.Value {
	return fn.AddParam(name, typ, &ir.VarDecl{Name: name})
}

func assertInferred(t *testing.T, v *ir.Value, opts Options, wantRoot *ir.Value, wantName string) {
	t.Helper()
	root, name := Infer(v, opts)
	if root != wantRoot {
		t.Errorf("Infer root = %v, want %v", root, wantRoot)
	}
	if name != wantName {
		t.Errorf("Infer name = %q, want %q", name, wantName)
	}
}

func assertNoRoot(t *testing.T, v *ir.Value, opts Options) {
	t.Helper()
	root, name := Infer(v, opts)
	if root != nil || name != "" {
		t.Errorf("Expected no inference result, got root %v, name %q", root, name)
	}
}

// =============================================================================
// Direct name sources
// =============================================================================

func TestInfer_NilValue(t *testing.T) {
	root, name := Infer(nil, 0)
	if root != nil || name != "" {
		t.Error("nil input should yield no result")
	}
}

func TestInfer_AllocWithDecl(t *testing.T) {
	_, b := newTestBlock()
	addr := b.AllocStack(intT, &ir.VarDecl{Name: "x"}, nil)

	assertInferred(t, addr, 0, addr, "x")
}

func TestInfer_AllocWithDebugInfo(t *testing.T) {
	_, b := newTestBlock()
	addr := b.AllocStack(intT, nil, &ir.DebugVar{Name: "count"})

	assertInferred(t, addr, 0, addr, "count")
}

func TestInfer_ParameterWithDecl(t *testing.T) {
	fn := ir.NewFunction("main")
	p := namedParam(fn, "p", intT)

	assertInferred(t, p, 0, p, "p")
}

func TestInfer_ParameterWithoutDecl(t *testing.T) {
	fn := ir.NewFunction("main")
	p := fn.AddParam("p", intT, nil)

	assertNoRoot(t, p, 0)
}

func TestInfer_GlobalAddr(t *testing.T) {
	_, b := newTestBlock()
	g := &ir.GlobalInfo{Name: "g", Decl: &ir.VarDecl{Name: "shared"}, Type: intT}
	addr := b.GlobalAddr(g)

	assertInferred(t, addr, 0, addr, "shared")
}

func TestInfer_DebugValueAnnotation(t *testing.T) {
	_, b := newTestBlock()
	c := b.Const(intT)
	b.DebugValue(c, &ir.DebugVar{Name: "answer"})

	// The root is the annotated value itself.
	assertInferred(t, c, 0, c, "answer")
}

func TestInfer_DebugValueWithoutInfoIsIgnored(t *testing.T) {
	_, b := newTestBlock()
	c := b.Const(intT)
	b.DebugValue(c, nil)

	assertNoRoot(t, c, 0)
}

func TestInfer_NoRuleMatches(t *testing.T) {
	_, b := newTestBlock()
	c := b.Const(intT)

	assertNoRoot(t, c, 0)
}

// =============================================================================
// Projections and decompositions
// =============================================================================

func TestInfer_RefAndStructProjectionChain(t *testing.T) {
	innerT := ir.StructType("Inner",
		ir.StructField{Decl: &ir.VarDecl{Name: "foo"}, Type: intT},
	)
	outerT := ir.StructType("Outer",
		ir.StructField{Decl: &ir.VarDecl{Name: "bar"}, Type: innerT},
	)

	fn := ir.NewFunction("method")
	self := namedParam(fn, "self", outerT)
	b := ir.NewBuilder(fn.NewBlock())

	bar := b.RefElementAddr(self, 0)
	foo := b.StructElementAddr(bar, 0)

	assertInferred(t, foo, 0, self, "self.bar.foo")
}

func TestInfer_TupleElementAddr(t *testing.T) {
	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, stringT))
	b := ir.NewBuilder(fn.NewBlock())

	e1 := b.TupleElementAddr(pair, 1)

	assertInferred(t, e1, 0, pair, "pair.1")
}

func TestInfer_StructExtract(t *testing.T) {
	ptT := ir.StructType("Point",
		ir.StructField{Decl: &ir.VarDecl{Name: "x"}, Type: intT},
		ir.StructField{Decl: &ir.VarDecl{Name: "y"}, Type: intT},
	)
	fn := ir.NewFunction("main")
	p := namedParam(fn, "p", ptT)
	b := ir.NewBuilder(fn.NewBlock())

	y := b.StructExtract(p, 1)

	assertInferred(t, y, 0, p, "p.y")
}

func TestInfer_DestructureTupleResult(t *testing.T) {
	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, stringT))
	b := ir.NewBuilder(fn.NewBlock())

	d := b.DestructureTuple(pair)

	assertInferred(t, d.Result(1), 0, pair, "pair.1")
}

func TestInfer_DestructureStructResult(t *testing.T) {
	ptT := ir.StructType("Point",
		ir.StructField{Decl: &ir.VarDecl{Name: "x"}, Type: intT},
		ir.StructField{Decl: &ir.VarDecl{Name: "y"}, Type: intT},
	)
	fn := ir.NewFunction("main")
	p := namedParam(fn, "p", ptT)
	b := ir.NewBuilder(fn.NewBlock())

	d := b.DestructureStruct(p)

	assertInferred(t, d.Result(0), 0, p, "p.x")
}

func TestInfer_OpenExistentialIsTransparent(t *testing.T) {
	fn := ir.NewFunction("main")
	box := namedParam(fn, "box", ir.OpaqueType("Any"))
	b := ir.NewBuilder(fn.NewBlock())

	opened := b.OpenExistentialAddr(box)

	assertInferred(t, opened, 0, box, "box")
}

func TestInfer_PassThroughChain(t *testing.T) {
	_, b := newTestBlock()
	addr := b.AllocStack(intT, &ir.VarDecl{Name: "x"}, nil)

	v := b.BeginBorrow(b.CopyValue(b.Load(b.BeginAccess(addr))))

	root, name := Infer(v, 0)
	if root != addr {
		t.Errorf("Root should be the allocation, got %v", root)
	}
	if name != "x" {
		t.Errorf("name = %q, want %q", name, "x")
	}
}

// =============================================================================
// Temporary allocations, scalar
// =============================================================================

func TestInfer_ScalarTemp_CopyAddrInit(t *testing.T) {
	_, b := newTestBlock()
	src := b.AllocStack(intT, &ir.VarDecl{Name: "x"}, nil)
	tmp := b.AllocStack(intT, nil, nil)
	b.CopyAddr(src, tmp, true)

	assertInferred(t, tmp, 0, src, "x")
}

func TestInfer_ScalarTemp_StoreInit(t *testing.T) {
	fn := ir.NewFunction("main")
	p := namedParam(fn, "p", intT)
	b := ir.NewBuilder(fn.NewBlock())

	tmp := b.AllocStack(intT, nil, nil)
	b.Store(p, tmp, ir.StoreInit)

	assertInferred(t, tmp, 0, p, "p")
}

func TestInfer_ScalarTemp_AssignOnlyFails(t *testing.T) {
	fn := ir.NewFunction("main")
	p := namedParam(fn, "p", intT)
	b := ir.NewBuilder(fn.NewBlock())

	tmp := b.AllocStack(intT, nil, nil)
	b.Store(p, tmp, ir.StoreAssign)

	assertNoRoot(t, tmp, 0)
}

func TestInfer_ScalarTemp_UnknownFirstWriteFails(t *testing.T) {
	_, b := newTestBlock()
	src := b.AllocStack(intT, &ir.VarDecl{Name: "x"}, nil)
	tmp := b.AllocStack(intT, nil, nil)

	// A call receiving the address may write it in a way we cannot see.
	f := b.FunctionRef(&ir.FuncInfo{Name: "init_in_place"})
	b.Apply(f, intT, tmp)
	b.CopyAddr(src, tmp, true)

	assertNoRoot(t, tmp, 0)
}

func TestInfer_ScalarTemp_EscapedAddressFails(t *testing.T) {
	_, b := newTestBlock()
	src := b.AllocStack(intT, &ir.VarDecl{Name: "x"}, nil)
	tmp := b.AllocStack(intT, nil, nil)
	b.CopyAddr(src, tmp, true)
	b.AddressToPointer(tmp)

	// The address-use walk is incomplete, so even a clean first write
	// cannot be trusted.
	assertNoRoot(t, tmp, 0)
}

func TestInfer_ScalarTemp_CustomWalkerRejection(t *testing.T) {
	_, b := newTestBlock()
	src := b.AllocStack(intT, &ir.VarDecl{Name: "x"}, nil)
	tmp := b.AllocStack(intT, nil, nil)
	b.CopyAddr(src, tmp, true)

	reject := WalkerFunc(func(root *ir.Value, visit func(*ir.Operand)) ir.AddressUseKind {
		return ir.AddressUseUnknown
	})
	root, name := NewInferrer(reject, 0, nil).Infer(tmp)
	if root != nil || name != "" {
		t.Error("An unknown walk must fail the resolution")
	}
}

// =============================================================================
// Temporary allocations, tuple
// =============================================================================

func tupleCopySetup(b *ir.Builder) (src, tmp *ir.Value) {
	tt := ir.TupleType(intT, stringT)
	src = b.AllocStack(tt, &ir.VarDecl{Name: "pair"}, nil)
	tmp = b.AllocStack(tt, nil, nil)
	return src, tmp
}

func TestInfer_TupleTemp_CopyAddrShape(t *testing.T) {
	_, b := newTestBlock()
	src, tmp := tupleCopySetup(b)

	for i := 0; i < 2; i++ {
		b.CopyAddr(b.TupleElementAddr(src, i), b.TupleElementAddr(tmp, i), true)
	}

	assertInferred(t, tmp, 0, src, "pair")
}

func TestInfer_TupleTemp_DestructureStoreShape(t *testing.T) {
	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, stringT))
	b := ir.NewBuilder(fn.NewBlock())

	tmp := b.AllocStack(pair.Type(), nil, nil)
	d := b.DestructureTuple(pair)
	b.Store(d.Result(0), b.TupleElementAddr(tmp, 0), ir.StoreInit)
	b.Store(d.Result(1), b.TupleElementAddr(tmp, 1), ir.StoreInit)

	assertInferred(t, tmp, 0, pair, "pair")
}

func TestInfer_TupleTemp_IndexMismatchFails(t *testing.T) {
	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, intT))
	b := ir.NewBuilder(fn.NewBlock())

	tmp := b.AllocStack(pair.Type(), nil, nil)
	d := b.DestructureTuple(pair)
	// Elements swapped: a reordering is not a plain forward.
	b.Store(d.Result(1), b.TupleElementAddr(tmp, 0), ir.StoreInit)
	b.Store(d.Result(0), b.TupleElementAddr(tmp, 1), ir.StoreInit)

	assertNoRoot(t, tmp, 0)
}

func TestInfer_TupleTemp_MixedShapesFail(t *testing.T) {
	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, intT))
	b := ir.NewBuilder(fn.NewBlock())

	src := b.AllocStack(pair.Type(), &ir.VarDecl{Name: "other"}, nil)
	tmp := b.AllocStack(pair.Type(), nil, nil)

	b.CopyAddr(b.TupleElementAddr(src, 0), b.TupleElementAddr(tmp, 0), true)
	d := b.DestructureTuple(pair)
	b.Store(d.Result(1), b.TupleElementAddr(tmp, 1), ir.StoreInit)

	assertNoRoot(t, tmp, 0)
}

func TestInfer_TupleTemp_DoubleAssignFails(t *testing.T) {
	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, intT))
	b := ir.NewBuilder(fn.NewBlock())

	tmp := b.AllocStack(pair.Type(), nil, nil)
	d := b.DestructureTuple(pair)
	b.Store(d.Result(0), b.TupleElementAddr(tmp, 0), ir.StoreInit)
	b.Store(d.Result(0), b.TupleElementAddr(tmp, 0), ir.StoreInit)

	assertNoRoot(t, tmp, 0)
}

func TestInfer_TupleTemp_PartialCoverageFails(t *testing.T) {
	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, intT))
	b := ir.NewBuilder(fn.NewBlock())

	tmp := b.AllocStack(pair.Type(), nil, nil)
	d := b.DestructureTuple(pair)
	b.Store(d.Result(0), b.TupleElementAddr(tmp, 0), ir.StoreInit)

	assertNoRoot(t, tmp, 0)
}

func TestInfer_TupleTemp_TwoSourceAddressesFail(t *testing.T) {
	tt := ir.TupleType(intT, intT)
	_, b := newTestBlock()
	a := b.AllocStack(tt, &ir.VarDecl{Name: "a"}, nil)
	c := b.AllocStack(tt, &ir.VarDecl{Name: "c"}, nil)
	tmp := b.AllocStack(tt, nil, nil)

	b.CopyAddr(b.TupleElementAddr(a, 0), b.TupleElementAddr(tmp, 0), true)
	b.CopyAddr(b.TupleElementAddr(c, 1), b.TupleElementAddr(tmp, 1), true)

	assertNoRoot(t, tmp, 0)
}

// =============================================================================
// Accessor calls
// =============================================================================

func accessorRef(b *ir.Builder, name, storage string) *ir.Value {
	decl := &ir.FuncDecl{Name: name, HasSelf: true}
	if storage != "" {
		decl.Storage = &ir.VarDecl{Name: storage}
	}
	return b.FunctionRef(&ir.FuncInfo{Name: name, Decl: decl, HasSelf: true})
}

func TestInfer_BeginApplyAccessor(t *testing.T) {
	fn := ir.NewFunction("caller")
	self := namedParam(fn, "self", ir.OpaqueType("Point"))
	b := ir.NewBuilder(fn.NewBlock())

	f := accessorRef(b, "read_value", "value")
	r := b.BeginApply(f, intT, self)

	assertInferred(t, r, 0, self, "self.value")
}

func TestInfer_BeginApplyAccessorWithoutArgumentsFails(t *testing.T) {
	_, b := newTestBlock()

	// Receiver metadata but no argument to be the receiver: the callee
	// operand must not be mistaken for one, even when it would resolve.
	f := accessorRef(b, "broken", "value")
	b.DebugValue(f, &ir.DebugVar{Name: "handler"})
	r := b.BeginApply(f, intT)

	assertNoRoot(t, r, 0)
}

func TestInfer_BeginApplyWithoutSelfFails(t *testing.T) {
	fn := ir.NewFunction("caller")
	namedParam(fn, "self", ir.OpaqueType("Point"))
	b := ir.NewBuilder(fn.NewBlock())

	f := b.FunctionRef(&ir.FuncInfo{Name: "free_coroutine"})
	r := b.BeginApply(f, intT)

	assertNoRoot(t, r, 0)
}

func TestInfer_PlainApplyNotTracedByDefault(t *testing.T) {
	fn := ir.NewFunction("caller")
	self := namedParam(fn, "self", ir.OpaqueType("Point"))
	b := ir.NewBuilder(fn.NewBlock())

	f := accessorRef(b, "get_value", "value")
	r := b.Apply(f, intT, self)

	assertNoRoot(t, r, 0)
}

func TestInfer_PlainApplyTracedWithAllAccessors(t *testing.T) {
	fn := ir.NewFunction("caller")
	self := namedParam(fn, "self", ir.OpaqueType("Point"))
	b := ir.NewBuilder(fn.NewBlock())

	f := accessorRef(b, "get_value", "value")
	r := b.Apply(f, intT, self)

	assertInferred(t, r, InferSelfThroughAllAccessors, self, "self.value")
}

func TestInfer_MethodCallTraced(t *testing.T) {
	fn := ir.NewFunction("caller")
	self := namedParam(fn, "self", ir.OpaqueType("Point"))
	b := ir.NewBuilder(fn.NewBlock())

	member := &ir.FuncDecl{Name: "read_mag", HasSelf: true, Storage: &ir.VarDecl{Name: "magnitude"}}
	m := b.Method(self, member)
	r := b.BeginApply(m, intT, self)

	assertInferred(t, r, 0, self, "self.magnitude")
}

func TestInfer_AddressorAccessor(t *testing.T) {
	fn := ir.NewFunction("caller")
	self := namedParam(fn, "self", ir.OpaqueType("Buffer"))
	b := ir.NewBuilder(fn.NewBlock())

	f := accessorRef(b, "element_addr", "element")
	p := b.Apply(f, ir.PointerType("ptr"), self)
	addr := b.PointerToAddress(p, intT)

	assertInferred(t, addr, 0, self, "self.element")
}

func TestInfer_AddressorAccessorThroughWrapper(t *testing.T) {
	ptrT := ir.PointerType("ptr")
	wrapT := ir.StructType("UnsafePointer",
		ir.StructField{Decl: &ir.VarDecl{Name: "raw"}, Type: ptrT},
	)

	fn := ir.NewFunction("caller")
	self := namedParam(fn, "self", ir.OpaqueType("Buffer"))
	b := ir.NewBuilder(fn.NewBlock())

	f := accessorRef(b, "element_addr", "element")
	wrapped := b.Apply(f, wrapT, self)
	raw := b.StructExtract(wrapped, 0)
	addr := b.PointerToAddress(raw, intT)

	assertInferred(t, addr, 0, self, "self.element")
}

func TestInfer_ThunkedFunctionValue(t *testing.T) {
	funcT := ir.FunctionType("func")
	fn := ir.NewFunction("caller")
	g := namedParam(fn, "g", funcT)
	b := ir.NewBuilder(fn.NewBlock())

	thunk := b.FunctionRef(&ir.FuncInfo{Name: "convert", IsThunk: true})
	pa := b.PartialApply(thunk, funcT, g)

	assertInferred(t, pa, 0, g, "g")
}

func TestInfer_PartialApplyNonThunkFails(t *testing.T) {
	funcT := ir.FunctionType("func")
	fn := ir.NewFunction("caller")
	g := namedParam(fn, "g", funcT)
	b := ir.NewBuilder(fn.NewBlock())

	f := b.FunctionRef(&ir.FuncInfo{Name: "closure"})
	pa := b.PartialApply(f, funcT, g)

	assertNoRoot(t, pa, 0)
}

// =============================================================================
// Reuse and printing
// =============================================================================

func TestInferrer_Reuse(t *testing.T) {
	inf := NewInferrer(nil, 0, nil)

	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, stringT))
	b := ir.NewBuilder(fn.NewBlock())
	e0 := b.TupleElementAddr(pair, 0)
	e1 := b.TupleElementAddr(pair, 1)

	if _, name := inf.Infer(e0); name != "pair.0" {
		t.Errorf("first call: name = %q, want %q", name, "pair.0")
	}
	if _, name := inf.Infer(e1); name != "pair.1" {
		t.Errorf("second call: name = %q, want %q", name, "pair.1")
	}
}

func TestInferrer_PathClearedAfterFailure(t *testing.T) {
	inf := NewInferrer(nil, 0, nil)

	fn := ir.NewFunction("main")
	pair := namedParam(fn, "pair", ir.TupleType(intT, stringT))
	bare := fn.AddParam("bare", intT, nil)
	b := ir.NewBuilder(fn.NewBlock())
	e1 := b.TupleElementAddr(pair, 1)

	if root, _ := inf.Infer(bare); root != nil {
		t.Fatal("undeclared parameter should not resolve")
	}
	// Components pushed before the failure must not leak into the next
	// inference.
	if _, name := inf.Infer(e1); name != "pair.1" {
		t.Errorf("name after failed call = %q, want %q", name, "pair.1")
	}
}

func TestInferrer_LogsWalkSteps(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	inf := NewInferrer(nil, 0, zap.New(core))

	fn := ir.NewFunction("main")
	p := namedParam(fn, "p", intT)
	b := ir.NewBuilder(fn.NewBlock())
	e := b.Load(p)

	if _, name := inf.Infer(e); name != "p" {
		t.Fatalf("name = %q, want %q", name, "p")
	}
	if logs.FilterMessage("walk step").Len() < 2 {
		t.Error("Each walk step should emit a debug entry")
	}
	if logs.FilterMessage("inferred name").Len() != 1 {
		t.Error("A successful inference should emit its result")
	}
}

func TestInferrer_Fprint_UsesInjectedLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	inf := NewInferrer(nil, 0, zap.New(core))

	fn := ir.NewFunction("main")
	p := namedParam(fn, "p", intT)

	var sb strings.Builder
	inf.Fprint(&sb, p)

	if !strings.Contains(sb.String(), "Name: 'p'") {
		t.Errorf("Fprint output missing name:\n%s", sb.String())
	}
	if logs.FilterMessage("walk step").Len() == 0 {
		t.Error("Fprint should trace through the Inferrer's logger")
	}
}

func TestFprint_Success(t *testing.T) {
	fn := ir.NewFunction("main")
	p := namedParam(fn, "p", intT)

	var sb strings.Builder
	Fprint(&sb, p, 0)

	want := "Input Value: p : Int (argument of main)\n" +
		"Name: 'p'\n" +
		"Root: p : Int (argument of main)\n"
	if sb.String() != want {
		t.Errorf("Fprint output:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestFprint_Unknown(t *testing.T) {
	_, b := newTestBlock()
	c := b.Const(intT)

	var sb strings.Builder
	Fprint(&sb, c, 0)

	out := sb.String()
	if !strings.Contains(out, "Name: 'unknown'") || !strings.Contains(out, "Root: 'unknown'") {
		t.Errorf("Fprint should report unknown, got:\n%s", out)
	}
}
