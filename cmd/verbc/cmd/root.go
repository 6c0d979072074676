package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "verbc",
	Short: "verbscript tokenizer, transpiler, decompiler and runner",
	Long: `verbc is the command-line front end for verbscript, a sandboxed
s-expression scripting engine embeddable in a Go host.

It drives each stage of the pipeline independently for debugging:
  tokens     - lex source into the surface token stream
  parse      - transpile source to the opcode AST and print it
  transpile  - alias of parse, emphasizing the surface-to-AST step
  decompile  - render an opcode AST back to surface source
  run        - transpile, compile, and execute a script`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
