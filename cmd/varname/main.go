// Command varname infers source-level variable names for values in a
// textual IR file.
//
// Usage:
//
//	varname --value t3 testdata/example.ir
package main

import (
	"fmt"
	"os"

	"github.com/mirlang/varname/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
