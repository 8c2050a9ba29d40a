package ir

// AddressUseKind is the outcome of a transitive address-use walk.
type AddressUseKind int

const (
	// AddressUseComplete means every transitive use was visited and
	// classified.
	AddressUseComplete AddressUseKind = iota
	// AddressUseUnknown means some use could not be classified (for
	// example the address escaped through address_to_pointer); the walk's
	// findings must not be trusted.
	AddressUseUnknown
)

// WalkAddressUses visits every transitive use of the address root exactly
// once, looking through projections and access markers. visit is called for
// each use edge encountered, including the projection edges themselves.
// The result is AddressUseUnknown as soon as a use cannot be classified;
// callers must then discard whatever visit collected.
func WalkAddressUses(root *Value, visit func(*Operand)) AddressUseKind {
	seen := map[*Value]bool{root: true}
	worklist := []*Value{root}

	for len(worklist) > 0 {
		n := len(worklist) - 1
		v := worklist[n]
		worklist = worklist[:n]

		for _, use := range v.Uses() {
			visit(use)

			user := use.User()
			if user.Op().projectsAddress() {
				for _, res := range user.Results() {
					if !seen[res] {
						seen[res] = true
						worklist = append(worklist, res)
					}
				}
				continue
			}

			switch user.Op() {
			case OpStore, OpCopyAddr, OpLoad, OpLoadBorrow,
				OpDeallocStack, OpEndAccess, OpDebugValue:
				// Understood end uses of an address.
			default:
				// Passing an address to a callee is understood; the
				// write classifier accounts for the potential write.
				if !user.Op().IsCallSite() {
					return AddressUseUnknown
				}
			}
		}
	}

	return AddressUseComplete
}
