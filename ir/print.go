package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the value the way diagnostics print it: arguments by name
// and type, instruction results as their defining instruction.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	if v.arg != nil {
		return fmt.Sprintf("%s : %s (argument of %s)", v.name, v.typ, v.arg.Func.Name)
	}
	return v.def.String()
}

// String renders the instruction in the textual IR syntax.
func (in *Instr) String() string {
	var sb strings.Builder

	switch len(in.results) {
	case 0:
	case 1:
		sb.WriteString(in.results[0].Name())
		sb.WriteString(" = ")
	default:
		names := make([]string, len(in.results))
		for i, r := range in.results {
			names[i] = r.Name()
		}
		sb.WriteString("(" + strings.Join(names, ", ") + ") = ")
	}

	switch in.op {
	case OpStore:
		fmt.Fprintf(&sb, "store %s to [%s] %s",
			in.Operand(0).Name(), in.storeKind, in.Operand(1).Name())
	case OpCopyAddr:
		sb.WriteString("copy_addr " + in.Operand(0).Name() + " to ")
		if in.initDest {
			sb.WriteString("[init] ")
		}
		sb.WriteString(in.Operand(1).Name())
	case OpAllocStack:
		sb.WriteString("alloc_stack " + in.allocType.String())
		if in.decl != nil {
			sb.WriteString(", decl(" + in.decl.Name + ")")
		}
		if in.varInfo != nil {
			sb.WriteString(", name(" + in.varInfo.Name + ")")
		}
	case OpGlobalAddr:
		sb.WriteString("global_addr " + in.global.Name)
	case OpFunctionRef:
		sb.WriteString("function_ref " + in.fn.Name)
	case OpMethod:
		sb.WriteString("method " + in.Operand(0).Name() + ", " + in.member.Name)
	case OpStructExtract, OpStructElementAddr, OpRefElementAddr:
		fmt.Fprintf(&sb, "%s %s, %s", in.op, in.Operand(0).Name(), in.field.Name)
	case OpTupleExtract, OpTupleElementAddr:
		fmt.Fprintf(&sb, "%s %s, %s", in.op, in.Operand(0).Name(), strconv.Itoa(in.index))
	case OpApply, OpBeginApply, OpPartialApply:
		args := make([]string, in.NumArgs())
		for i := range args {
			args[i] = in.CallArg(i).Name()
		}
		fmt.Fprintf(&sb, "%s %s(%s)", in.op, in.Callee().Name(), strings.Join(args, ", "))
		if len(in.results) > 0 {
			sb.WriteString(" : " + in.results[0].Type().String())
		}
	case OpPointerToAddress:
		fmt.Fprintf(&sb, "pointer_to_address %s : %s", in.Operand(0).Name(), in.allocType)
	case OpDebugValue:
		sb.WriteString("debug_value " + in.Operand(0).Name())
		if in.varInfo != nil {
			sb.WriteString(", name(" + in.varInfo.Name + ")")
		}
	case OpConst:
		sb.WriteString("const : " + in.results[0].Type().String())
	default:
		sb.WriteString(in.op.String())
		for i, o := range in.operands {
			if i == 0 {
				sb.WriteString(" ")
			} else {
				sb.WriteString(", ")
			}
			sb.WriteString(o.Value().Name())
		}
	}

	return sb.String()
}
