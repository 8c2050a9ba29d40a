// Package irtext parses the line-oriented textual form of the IR, used by
// the varname query tool and by test fixtures.
//
// A file is a sequence of module-level declarations followed by function
// bodies. Comments run from "//" to end of line. One instruction per line.
//
// Module-level declarations:
//
//	struct Point { x: Int, y: Int }
//	global g : Int decl
//	func getter accessor(value) self
//	func conv thunk
//	member Point.magnitude accessor(mag)
//
// Function bodies:
//
//	fn main(self: Point decl, pair: (Int, String)) {
//	bb0:
//	  t0 = alloc_stack (Int, String)
//	  t1 = tuple_element_addr t0, 0
//	  (a, b) = destructure_tuple pair
//	  store a to [init] t1
//	  ret
//	}
//
// Types are either declared struct names, inline tuples "(A, B)", the
// builtin markers "func" and "ptr", or opaque named scalars created on
// first use. Value names are unique within a file so queries can address
// any value directly.
package irtext
