package varname

import (
	"strconv"
	"strings"

	"github.com/mirlang/varname/ir"
)

// =============================================================================
// Name Renderer
//
// The walker appends components closest-to-target first, so the entries
// nearest the root sit at the end of the path. Draining pops from the end,
// which yields root-to-leaf order: "self.bar.foo". Draining empties the
// path; it is single use.
// =============================================================================

const unknownDecl = "<unknown decl>"

func declName(d *ir.VarDecl) string {
	if d == nil {
		return unknownDecl
	}
	return d.Name
}

// funcDeclName prefers an accessor's storage name, so a getter for "x"
// contributes "x" to the path.
func funcDeclName(d *ir.FuncDecl) string {
	if d == nil {
		return unknownDecl
	}
	if d.Storage != nil {
		return d.Storage.Name
	}
	return d.Name
}

// carriedDecl returns the variable declaration an instruction inherently
// names: the declared variable of an allocation, the global behind a
// global_addr, the field behind a ref_element_addr.
func carriedDecl(in *ir.Instr) *ir.VarDecl {
	switch in.Op() {
	case ir.OpAllocStack:
		return in.Decl()
	case ir.OpGlobalAddr:
		if g := in.Global(); g != nil {
			return g.Decl
		}
	case ir.OpRefElementAddr:
		return in.Field()
	}
	return nil
}

// popComponentName removes the most recently appended path entry and writes
// its fragment.
func (inf *Inferrer) popComponentName(sb *strings.Builder) {
	n := len(inf.path) - 1
	next := inf.path[n]
	inf.path = inf.path[:n]

	if in := next.instr; in != nil {
		if vi := in.VarInfo(); vi != nil && vi.Name != "" {
			sb.WriteString(vi.Name)
			return
		}
		if d := carriedDecl(in); d != nil {
			sb.WriteString(d.Name)
			return
		}

		switch in.Op() {
		case ir.OpFunctionRef:
			if fi := in.Func(); fi != nil && fi.Decl != nil {
				sb.WriteString(funcDeclName(fi.Decl))
				return
			}
			sb.WriteString(unknownDecl)
		case ir.OpMethod:
			sb.WriteString(funcDeclName(in.Member()))
		case ir.OpStructExtract, ir.OpStructElementAddr:
			sb.WriteString(declName(in.Field()))
		case ir.OpTupleExtract, ir.OpTupleElementAddr:
			sb.WriteString(strconv.Itoa(in.Index()))
		default:
			sb.WriteString(unknownDecl)
		}
		return
	}

	v := next.value
	if arg := v.Arg(); arg != nil && arg.Decl != nil {
		sb.WriteString(arg.Decl.Name)
		return
	}
	if def := v.DefiningInstr(); def != nil {
		switch def.Op() {
		case ir.OpDestructureTuple:
			sb.WriteString(strconv.Itoa(v.ResultIndex()))
			return
		case ir.OpDestructureStruct:
			t := def.Operand(0).Type()
			if v.ResultIndex() < t.NumFields() {
				sb.WriteString(declName(t.Field(v.ResultIndex()).Decl))
				return
			}
		}
	}
	sb.WriteString(unknownDecl)
}

// drainPath consumes the name path root-first, joining fragments with dots.
func (inf *Inferrer) drainPath() string {
	if len(inf.path) == 0 {
		return ""
	}

	var sb strings.Builder
	for {
		inf.popComponentName(&sb)
		if len(inf.path) == 0 {
			return sb.String()
		}
		sb.WriteByte('.')
	}
}
