package ir

// VarDecl is a declared variable, parameter, or stored property carrying a
// user-facing name.
type VarDecl struct {
	Name string
}

// FuncDecl is a declared function or member. Accessors link back to the
// storage they mediate; name rendering prefers the storage's name so that a
// getter for `x` renders as `x`, not `getX`.
type FuncDecl struct {
	Name    string
	Storage *VarDecl // non-nil for accessor declarations
	HasSelf bool     // declared with a receiver parameter
}

// DebugVar is the name annotation a debug-value instruction or an allocation
// carries for a source variable.
type DebugVar struct {
	Name string
}

// FuncInfo describes a function referenced by a function_ref instruction.
type FuncInfo struct {
	Name    string
	Decl    *FuncDecl // enclosing declaration, may be nil for synthesized fns
	IsThunk bool      // forwarding wrapper generated by the compiler
	HasSelf bool      // signature carries a self parameter (last argument)
}

// GlobalInfo describes the global variable a global_addr instruction
// addresses.
type GlobalInfo struct {
	Name string
	Decl *VarDecl
	Type *Type
}
