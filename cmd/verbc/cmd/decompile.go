package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/verbscript/internal/decompile"
	"github.com/cwbudde/verbscript/internal/transpile"
)

var decompileEval string

var decompileCmd = &cobra.Command{
	Use:   "decompile [file]",
	Short: "Transpile source then decompile it back to surface syntax",
	Long: `Transpile verbscript source to its opcode AST, then immediately
decompile that AST back to surface syntax.

Useful for checking how the decompiler would render a given opcode tree,
and for spotting any transpile-decompile-retranspile mismatches on source
you're writing by hand.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecompile,
}

func init() {
	rootCmd.AddCommand(decompileCmd)

	decompileCmd.Flags().StringVarP(&decompileEval, "eval", "e", "", "decompile inline code instead of reading from a file")
}

func runDecompile(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(args, decompileEval)
	if err != nil {
		return err
	}

	node, err := transpile.Transpile(input, knownOpcodes())
	if err != nil {
		return fmt.Errorf("transpile %s: %w", filename, err)
	}

	out, err := decompile.Decompile(node)
	if err != nil {
		return fmt.Errorf("decompile %s: %w", filename, err)
	}

	fmt.Print(out)
	return nil
}
