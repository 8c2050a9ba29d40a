package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mirlang/varname/ir"
)

// File is a parsed IR file.
type File struct {
	Funcs []*ir.Function

	values map[string]*ir.Value
}

// Value looks a value up by its display name, or returns nil.
func (f *File) Value(name string) *ir.Value { return f.values[name] }

// Func looks a function up by name, or returns nil.
func (f *File) Func(name string) *ir.Function {
	for _, fn := range f.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Parse parses a textual IR file.
func Parse(src string) (*File, error) {
	p := &parser{
		file:    &File{values: make(map[string]*ir.Value)},
		structs: make(map[string]*ir.Type),
		opaques: make(map[string]*ir.Type),
		funcs:   make(map[string]*ir.FuncInfo),
		members: make(map[string]*ir.FuncDecl),
		globals: make(map[string]*ir.GlobalInfo),
	}

	for i, raw := range strings.Split(src, "\n") {
		p.line = i + 1
		if err := p.parseLine(raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if p.fn != nil {
		return nil, fmt.Errorf("line %d: unterminated function %q", p.line, p.fn.Name)
	}
	return p.file, nil
}

type parser struct {
	file    *File
	structs map[string]*ir.Type
	opaques map[string]*ir.Type
	funcs   map[string]*ir.FuncInfo
	members map[string]*ir.FuncDecl
	globals map[string]*ir.GlobalInfo

	fn      *ir.Function
	builder *ir.Builder
	line    int
}

func (p *parser) parseLine(raw string) error {
	list, err := scanLine(raw)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}
	t := &toks{list: list}

	if p.fn == nil {
		switch {
		case t.acceptIdent("struct"):
			return p.parseStruct(t)
		case t.acceptIdent("global"):
			return p.parseGlobal(t)
		case t.acceptIdent("func"):
			return p.parseFunc(t)
		case t.acceptIdent("member"):
			return p.parseMember(t)
		case t.acceptIdent("fn"):
			return p.parseFnHeader(t)
		default:
			return fmt.Errorf("unexpected %q outside a function body", list[0].text)
		}
	}

	// Inside a function body.
	if t.acceptPunct("}") {
		if !t.atEnd() {
			return fmt.Errorf("trailing tokens after %q", "}")
		}
		p.fn, p.builder = nil, nil
		return nil
	}
	if len(list) == 2 && list[0].kind == tokIdent && list[1].text == ":" {
		// Block label.
		p.builder.SetBlock(p.fn.NewBlock())
		return nil
	}
	return p.parseInstr(t)
}

// =============================================================================
// Module-level declarations
// =============================================================================

func (p *parser) parseStruct(t *toks) error {
	name, err := t.expectIdent()
	if err != nil {
		return err
	}
	if _, ok := p.structs[name]; ok {
		return fmt.Errorf("duplicate struct %q", name)
	}
	if err := t.expectPunct("{"); err != nil {
		return err
	}

	var fields []ir.StructField
	for !t.acceptPunct("}") {
		if len(fields) > 0 {
			if err := t.expectPunct(","); err != nil {
				return err
			}
		}
		fname, err := t.expectIdent()
		if err != nil {
			return err
		}
		if err := t.expectPunct(":"); err != nil {
			return err
		}
		ftyp, err := p.parseType(t)
		if err != nil {
			return err
		}
		fields = append(fields, ir.StructField{Decl: &ir.VarDecl{Name: fname}, Type: ftyp})
	}
	if err := t.expectEnd(); err != nil {
		return err
	}

	p.structs[name] = ir.StructType(name, fields...)
	return nil
}

func (p *parser) parseGlobal(t *toks) error {
	name, err := t.expectIdent()
	if err != nil {
		return err
	}
	if _, ok := p.globals[name]; ok {
		return fmt.Errorf("duplicate global %q", name)
	}
	if err := t.expectPunct(":"); err != nil {
		return err
	}
	typ, err := p.parseType(t)
	if err != nil {
		return err
	}

	g := &ir.GlobalInfo{Name: name, Type: typ}
	if t.acceptIdent("decl") {
		declName := name
		if t.acceptPunct("(") {
			if declName, err = t.expectIdent(); err != nil {
				return err
			}
			if err := t.expectPunct(")"); err != nil {
				return err
			}
		}
		g.Decl = &ir.VarDecl{Name: declName}
	}
	if err := t.expectEnd(); err != nil {
		return err
	}

	p.globals[name] = g
	return nil
}

func (p *parser) parseFunc(t *toks) error {
	name, err := t.expectIdent()
	if err != nil {
		return err
	}
	if _, ok := p.funcs[name]; ok {
		return fmt.Errorf("duplicate func %q", name)
	}

	decl := &ir.FuncDecl{Name: name}
	fi := &ir.FuncInfo{Name: name, Decl: decl}
	for !t.atEnd() {
		attr, err := t.expectIdent()
		if err != nil {
			return err
		}
		switch attr {
		case "accessor":
			storage, err := t.parenArg()
			if err != nil {
				return err
			}
			decl.Storage = &ir.VarDecl{Name: storage}
		case "thunk":
			fi.IsThunk = true
		case "self":
			fi.HasSelf = true
			decl.HasSelf = true
		case "nodecl":
			fi.Decl = nil
		default:
			return fmt.Errorf("unknown func attribute %q", attr)
		}
	}

	p.funcs[name] = fi
	return nil
}

func (p *parser) parseMember(t *toks) error {
	// The qualifying type name is documentation only.
	if _, err := t.expectIdent(); err != nil {
		return err
	}
	if err := t.expectPunct("."); err != nil {
		return err
	}
	name, err := t.expectIdent()
	if err != nil {
		return err
	}
	if _, ok := p.members[name]; ok {
		return fmt.Errorf("duplicate member %q", name)
	}

	decl := &ir.FuncDecl{Name: name, HasSelf: true}
	if t.acceptIdent("accessor") {
		storage, err := t.parenArg()
		if err != nil {
			return err
		}
		decl.Storage = &ir.VarDecl{Name: storage}
	}
	if err := t.expectEnd(); err != nil {
		return err
	}

	p.members[name] = decl
	return nil
}

func (p *parser) parseFnHeader(t *toks) error {
	name, err := t.expectIdent()
	if err != nil {
		return err
	}
	fn := ir.NewFunction(name)

	if err := t.expectPunct("("); err != nil {
		return err
	}
	for !t.acceptPunct(")") {
		if len(fn.Params) > 0 {
			if err := t.expectPunct(","); err != nil {
				return err
			}
		}
		pname, err := t.expectIdent()
		if err != nil {
			return err
		}
		if err := t.expectPunct(":"); err != nil {
			return err
		}
		typ, err := p.parseType(t)
		if err != nil {
			return err
		}

		var decl *ir.VarDecl
		if t.acceptIdent("decl") {
			declName := pname
			if t.acceptPunct("(") {
				if declName, err = t.expectIdent(); err != nil {
					return err
				}
				if err := t.expectPunct(")"); err != nil {
					return err
				}
			}
			decl = &ir.VarDecl{Name: declName}
		}

		v := fn.AddParam(pname, typ, decl)
		if err := p.register(v); err != nil {
			return err
		}
	}
	if err := t.expectPunct("{"); err != nil {
		return err
	}
	if err := t.expectEnd(); err != nil {
		return err
	}

	p.fn = fn
	p.builder = ir.NewBuilder(fn.NewBlock())
	p.file.Funcs = append(p.file.Funcs, fn)
	return nil
}

// =============================================================================
// Instructions
// =============================================================================

func (p *parser) parseInstr(t *toks) error {
	var resultNames []string
	switch {
	case t.acceptPunct("("):
		for !t.acceptPunct(")") {
			if len(resultNames) > 0 {
				if err := t.expectPunct(","); err != nil {
					return err
				}
			}
			n, err := t.expectIdent()
			if err != nil {
				return err
			}
			resultNames = append(resultNames, n)
		}
		if err := t.expectPunct("="); err != nil {
			return err
		}
	case len(t.list) > 1 && t.list[0].kind == tokIdent && t.list[1].text == "=":
		n, _ := t.expectIdent()
		t.pos++ // consume "="
		resultNames = []string{n}
	}

	op, err := t.expectIdent()
	if err != nil {
		return err
	}
	in, err := p.parseOp(op, t)
	if err != nil {
		return err
	}
	if err := t.expectEnd(); err != nil {
		return err
	}
	return p.nameResults(in, resultNames)
}

func (p *parser) parseOp(op string, t *toks) (*ir.Instr, error) {
	b := p.builder
	switch op {
	case "alloc_stack":
		typ, err := p.parseType(t)
		if err != nil {
			return nil, err
		}
		var decl *ir.VarDecl
		var vi *ir.DebugVar
		for t.acceptPunct(",") {
			attr, err := t.expectIdent()
			if err != nil {
				return nil, err
			}
			arg, err := t.parenArg()
			if err != nil {
				return nil, err
			}
			switch attr {
			case "decl":
				decl = &ir.VarDecl{Name: arg}
			case "name":
				vi = &ir.DebugVar{Name: arg}
			default:
				return nil, fmt.Errorf("unknown alloc_stack attribute %q", attr)
			}
		}
		return b.AllocStack(typ, decl, vi).DefiningInstr(), nil

	case "dealloc_stack":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		return b.DeallocStack(v), nil

	case "store":
		src, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if err := t.expectIdentWord("to"); err != nil {
			return nil, err
		}
		if err := t.expectPunct("["); err != nil {
			return nil, err
		}
		kindName, err := t.expectIdent()
		if err != nil {
			return nil, err
		}
		var kind ir.StoreKind
		switch kindName {
		case "init":
			kind = ir.StoreInit
		case "assign":
			kind = ir.StoreAssign
		default:
			return nil, fmt.Errorf("unknown store qualifier %q", kindName)
		}
		if err := t.expectPunct("]"); err != nil {
			return nil, err
		}
		dest, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		return b.Store(src, dest, kind), nil

	case "copy_addr":
		src, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if err := t.expectIdentWord("to"); err != nil {
			return nil, err
		}
		initDest := false
		if t.acceptPunct("[") {
			if err := t.expectIdentWord("init"); err != nil {
				return nil, err
			}
			if err := t.expectPunct("]"); err != nil {
				return nil, err
			}
			initDest = true
		}
		dest, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		return b.CopyAddr(src, dest, initDest), nil

	case "load", "load_borrow", "begin_access", "project_box", "begin_borrow",
		"copy_value", "convert_function", "mark_uninitialized", "mark_no_copy",
		"wrap_linear", "unwrap_linear", "open_existential_addr", "address_to_pointer":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		return p.unary(op, v), nil

	case "end_access":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		return b.EndAccess(v), nil

	case "struct_extract", "struct_element_addr", "ref_element_addr":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if err := t.expectPunct(","); err != nil {
			return nil, err
		}
		fname, err := t.expectIdent()
		if err != nil {
			return nil, err
		}
		idx, _, ok := v.Type().FieldNamed(fname)
		if !ok {
			return nil, fmt.Errorf("%s: type %s has no field %q", op, v.Type(), fname)
		}
		switch op {
		case "struct_extract":
			return b.StructExtract(v, idx).DefiningInstr(), nil
		case "struct_element_addr":
			return b.StructElementAddr(v, idx).DefiningInstr(), nil
		default:
			return b.RefElementAddr(v, idx).DefiningInstr(), nil
		}

	case "tuple_extract", "tuple_element_addr":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if err := t.expectPunct(","); err != nil {
			return nil, err
		}
		idx, err := t.expectInt()
		if err != nil {
			return nil, err
		}
		if !v.Type().IsTuple() || idx >= v.Type().NumTupleElements() {
			return nil, fmt.Errorf("%s: index %d out of range for %s", op, idx, v.Type())
		}
		if op == "tuple_extract" {
			return b.TupleExtract(v, idx).DefiningInstr(), nil
		}
		return b.TupleElementAddr(v, idx).DefiningInstr(), nil

	case "destructure_tuple":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if !v.Type().IsTuple() {
			return nil, fmt.Errorf("destructure_tuple of non-tuple %s", v.Type())
		}
		return b.DestructureTuple(v), nil

	case "destructure_struct":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if !v.Type().IsStruct() {
			return nil, fmt.Errorf("destructure_struct of non-struct %s", v.Type())
		}
		return b.DestructureStruct(v), nil

	case "global_addr":
		name, err := t.expectIdent()
		if err != nil {
			return nil, err
		}
		g, ok := p.globals[name]
		if !ok {
			return nil, fmt.Errorf("undeclared global %q", name)
		}
		return b.GlobalAddr(g).DefiningInstr(), nil

	case "function_ref":
		name, err := t.expectIdent()
		if err != nil {
			return nil, err
		}
		fi, ok := p.funcs[name]
		if !ok {
			return nil, fmt.Errorf("undeclared func %q", name)
		}
		return b.FunctionRef(fi).DefiningInstr(), nil

	case "method":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if err := t.expectPunct(","); err != nil {
			return nil, err
		}
		name, err := t.expectIdent()
		if err != nil {
			return nil, err
		}
		m, ok := p.members[name]
		if !ok {
			return nil, fmt.Errorf("undeclared member %q", name)
		}
		return b.Method(v, m).DefiningInstr(), nil

	case "apply", "begin_apply", "partial_apply":
		callee, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if err := t.expectPunct("("); err != nil {
			return nil, err
		}
		var args []*ir.Value
		for !t.acceptPunct(")") {
			if len(args) > 0 {
				if err := t.expectPunct(","); err != nil {
					return nil, err
				}
			}
			a, err := p.operand(t)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		if err := t.expectPunct(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType(t)
		if err != nil {
			return nil, err
		}
		switch op {
		case "apply":
			return b.Apply(callee, typ, args...).DefiningInstr(), nil
		case "begin_apply":
			return b.BeginApply(callee, typ, args...).DefiningInstr(), nil
		default:
			return b.PartialApply(callee, typ, args...).DefiningInstr(), nil
		}

	case "pointer_to_address":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		if err := t.expectPunct(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType(t)
		if err != nil {
			return nil, err
		}
		return b.PointerToAddress(v, typ).DefiningInstr(), nil

	case "debug_value":
		v, err := p.operand(t)
		if err != nil {
			return nil, err
		}
		var vi *ir.DebugVar
		if t.acceptPunct(",") {
			if err := t.expectIdentWord("name"); err != nil {
				return nil, err
			}
			arg, err := t.parenArg()
			if err != nil {
				return nil, err
			}
			vi = &ir.DebugVar{Name: arg}
		}
		return b.DebugValue(v, vi), nil

	case "const":
		if err := t.expectPunct(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType(t)
		if err != nil {
			return nil, err
		}
		return b.Const(typ).DefiningInstr(), nil

	case "br":
		return b.Branch(), nil

	case "ret":
		var results []*ir.Value
		for !t.atEnd() {
			if len(results) > 0 {
				if err := t.expectPunct(","); err != nil {
					return nil, err
				}
			}
			v, err := p.operand(t)
			if err != nil {
				return nil, err
			}
			results = append(results, v)
		}
		return b.Return(results...), nil
	}

	return nil, fmt.Errorf("unknown instruction %q", op)
}

func (p *parser) unary(op string, v *ir.Value) *ir.Instr {
	b := p.builder
	var r *ir.Value
	switch op {
	case "load":
		r = b.Load(v)
	case "load_borrow":
		r = b.LoadBorrow(v)
	case "begin_access":
		r = b.BeginAccess(v)
	case "project_box":
		r = b.ProjectBox(v)
	case "begin_borrow":
		r = b.BeginBorrow(v)
	case "copy_value":
		r = b.CopyValue(v)
	case "convert_function":
		r = b.ConvertFunction(v)
	case "mark_uninitialized":
		r = b.MarkUninitialized(v)
	case "mark_no_copy":
		r = b.MarkNoCopy(v)
	case "wrap_linear":
		r = b.WrapLinear(v)
	case "unwrap_linear":
		r = b.UnwrapLinear(v)
	case "open_existential_addr":
		r = b.OpenExistentialAddr(v)
	case "address_to_pointer":
		r = b.AddressToPointer(v)
	}
	return r.DefiningInstr()
}

// =============================================================================
// Shared pieces
// =============================================================================

func (p *parser) operand(t *toks) (*ir.Value, error) {
	name, err := t.expectIdent()
	if err != nil {
		return nil, err
	}
	v := p.file.values[name]
	if v == nil {
		return nil, fmt.Errorf("undefined value %q", name)
	}
	return v, nil
}

func (p *parser) register(v *ir.Value) error {
	if _, ok := p.file.values[v.Name()]; ok {
		return fmt.Errorf("duplicate value name %q", v.Name())
	}
	p.file.values[v.Name()] = v
	return nil
}

func (p *parser) nameResults(in *ir.Instr, names []string) error {
	if len(names) != len(in.Results()) {
		return fmt.Errorf("%s defines %d values, got %d names",
			in.Op(), len(in.Results()), len(names))
	}
	for i, name := range names {
		v := in.Result(i)
		v.SetName(name)
		if err := p.register(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseType(t *toks) (*ir.Type, error) {
	if t.acceptPunct("(") {
		var elems []*ir.Type
		for !t.acceptPunct(")") {
			if len(elems) > 0 {
				if err := t.expectPunct(","); err != nil {
					return nil, err
				}
			}
			e, err := p.parseType(t)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return ir.TupleType(elems...), nil
	}

	name, err := t.expectIdent()
	if err != nil {
		return nil, err
	}
	switch name {
	case "func":
		return ir.FunctionType("func"), nil
	case "ptr":
		return ir.PointerType("ptr"), nil
	}
	if st, ok := p.structs[name]; ok {
		return st, nil
	}
	op, ok := p.opaques[name]
	if !ok {
		op = ir.OpaqueType(name)
		p.opaques[name] = op
	}
	return op, nil
}

// =============================================================================
// Token cursor
// =============================================================================

type toks struct {
	list []tok
	pos  int
}

func (t *toks) atEnd() bool { return t.pos >= len(t.list) }

func (t *toks) acceptPunct(s string) bool {
	if !t.atEnd() && t.list[t.pos].kind == tokPunct && t.list[t.pos].text == s {
		t.pos++
		return true
	}
	return false
}

func (t *toks) acceptIdent(s string) bool {
	if !t.atEnd() && t.list[t.pos].kind == tokIdent && t.list[t.pos].text == s {
		t.pos++
		return true
	}
	return false
}

func (t *toks) expectPunct(s string) error {
	if !t.acceptPunct(s) {
		return fmt.Errorf("expected %q at %s", s, t.describe())
	}
	return nil
}

func (t *toks) expectIdent() (string, error) {
	if t.atEnd() || t.list[t.pos].kind != tokIdent {
		return "", fmt.Errorf("expected identifier at %s", t.describe())
	}
	s := t.list[t.pos].text
	t.pos++
	return s, nil
}

func (t *toks) expectIdentWord(s string) error {
	if !t.acceptIdent(s) {
		return fmt.Errorf("expected %q at %s", s, t.describe())
	}
	return nil
}

func (t *toks) expectInt() (int, error) {
	if t.atEnd() || t.list[t.pos].kind != tokInt {
		return 0, fmt.Errorf("expected integer at %s", t.describe())
	}
	n, err := strconv.Atoi(t.list[t.pos].text)
	if err != nil {
		return 0, err
	}
	t.pos++
	return n, nil
}

func (t *toks) expectEnd() error {
	if !t.atEnd() {
		return fmt.Errorf("trailing tokens starting at %q", t.list[t.pos].text)
	}
	return nil
}

// parenArg parses "(" ident ")".
func (t *toks) parenArg() (string, error) {
	if err := t.expectPunct("("); err != nil {
		return "", err
	}
	s, err := t.expectIdent()
	if err != nil {
		return "", err
	}
	if err := t.expectPunct(")"); err != nil {
		return "", err
	}
	return s, nil
}

func (t *toks) describe() string {
	if t.atEnd() {
		return "end of line"
	}
	return fmt.Sprintf("%q", t.list[t.pos].text)
}
