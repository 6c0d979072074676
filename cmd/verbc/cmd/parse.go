package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib"
	"github.com/cwbudde/verbscript/internal/transpile"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:     "parse [file]",
	Aliases: []string{"transpile"},
	Short:   "Transpile verbscript source to the opcode AST and print it",
	Long: `Transpile surface verbscript source code to its opcode AST and
print the result in s-expression notation, e.g. (add 1 2).

Reads from a file, an inline -e expression, or stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "transpile inline code instead of reading from a file")
}

// knownOpcodes builds the registry the engine would use for a default
// embedding, so the transpiler can resolve dotted call syntax the way a
// host-configured Engine would.
func knownOpcodes() map[string]bool {
	ops := registry.New()
	stdlib.RegisterAll(ops, nil)
	known := make(map[string]bool, 64)
	for _, n := range ops.Names() {
		known[n] = true
	}
	return known
}

func runParse(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(args, parseEval)
	if err != nil {
		return err
	}

	node, err := transpile.Transpile(input, knownOpcodes())
	if err != nil {
		return fmt.Errorf("transpile %s: %w", filename, err)
	}

	fmt.Println(node.String())
	return nil
}
