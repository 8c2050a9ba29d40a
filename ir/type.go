package ir

import "strings"

// TypeKind discriminates the shapes of Type this pass cares about. Anything
// it never inspects structurally stays KindOpaque.
type TypeKind int

const (
	KindOpaque TypeKind = iota
	KindTuple
	KindStruct
	KindFunction
	KindPointer
)

// StructField is one stored property of a struct type, in declaration order.
type StructField struct {
	Decl *VarDecl
	Type *Type
}

// Type is a static type attached to values. Types carry only the structure
// name inference needs: tuple arity, stored properties, and whether a value
// is function-typed.
type Type struct {
	kind   TypeKind
	name   string
	elems  []*Type       // KindTuple
	fields []StructField // KindStruct
}

// OpaqueType returns a type with no inspectable structure.
func OpaqueType(name string) *Type {
	return &Type{kind: KindOpaque, name: name}
}

// TupleType returns a tuple type over the given element types.
func TupleType(elems ...*Type) *Type {
	return &Type{kind: KindTuple, elems: elems}
}

// StructType returns a struct type with the given name and stored properties.
func StructType(name string, fields ...StructField) *Type {
	return &Type{kind: KindStruct, name: name, fields: fields}
}

// FunctionType returns an opaque function type.
func FunctionType(name string) *Type {
	return &Type{kind: KindFunction, name: name}
}

// PointerType returns an opaque raw-pointer type.
func PointerType(name string) *Type {
	return &Type{kind: KindPointer, name: name}
}

// Kind returns the type's shape discriminator.
func (t *Type) Kind() TypeKind { return t.kind }

// IsTuple reports whether the type is a tuple.
func (t *Type) IsTuple() bool { return t.kind == KindTuple }

// IsStruct reports whether the type is a struct with stored properties.
func (t *Type) IsStruct() bool { return t.kind == KindStruct }

// IsFunction reports whether values of this type are callable.
func (t *Type) IsFunction() bool { return t.kind == KindFunction }

// NumTupleElements returns the tuple arity, or 0 for non-tuples.
func (t *Type) NumTupleElements() int { return len(t.elems) }

// TupleElement returns the type of tuple element i.
func (t *Type) TupleElement(i int) *Type { return t.elems[i] }

// NumFields returns the number of stored properties, or 0 for non-structs.
func (t *Type) NumFields() int { return len(t.fields) }

// Field returns stored property i.
func (t *Type) Field(i int) StructField { return t.fields[i] }

// FieldNamed looks a stored property up by declared name. The second result
// is false when the type is not a struct or has no such property.
func (t *Type) FieldNamed(name string) (int, StructField, bool) {
	for i, f := range t.fields {
		if f.Decl != nil && f.Decl.Name == name {
			return i, f, true
		}
	}
	return 0, StructField{}, false
}

func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	switch t.kind {
	case KindTuple:
		parts := make([]string, len(t.elems))
		for i, e := range t.elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return t.name
	}
}
