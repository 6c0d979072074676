// Command verbc is the CLI front end for verbscript: tokenize, transpile,
// decompile, and run scripts against the sandboxed s-expression engine.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/verbscript/cmd/verbc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
