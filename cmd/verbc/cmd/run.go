package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/verbscript/internal/scripterr"
	"github.com/cwbudde/verbscript/pkg/verbscript"
)

var (
	runEval    string
	runDumpAST bool
	runGas     int64
	runProfile string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Transpile, compile, and execute a verbscript program",
	Long: `Execute a verbscript program from a file, an inline -e expression,
or stdin.

Examples:
  verbc run script.vs
  verbc run -e "std.warn(\"hi\"); 1 + 2;"
  verbc run --dump-ast script.vs
  verbc run --gas 10000 script.vs
  verbc run --profile sandbox.yaml script.vs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "execute inline code instead of reading from a file")
	runCmd.Flags().BoolVar(&runDumpAST, "dump-ast", false, "print the transpiled AST before executing")
	runCmd.Flags().Int64Var(&runGas, "gas", 0, "interpreter step budget (0 = engine default)")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "YAML opcode-library profile restricting which stdlib libraries are registered")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(args, runEval)
	if err != nil {
		return err
	}

	opts := verbscript.EngineOptions{Gas: runGas}
	if runProfile != "" {
		profile, err := verbscript.LoadProfile(runProfile)
		if err != nil {
			return err
		}
		opts.Profile = profile
	}
	engine := verbscript.New(opts)

	node, err := engine.Transpile(input)
	if err != nil {
		return fmt.Errorf("transpile %s: %w", filename, err)
	}

	if runDumpAST {
		fmt.Println("AST:")
		fmt.Println(node.String())
		fmt.Println()
	}

	result, err := engine.Run(node, nil, nil, nil)
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, scripterr.AsScriptError(err).Error())
		return fmt.Errorf("execution failed")
	}

	if result.Value != nil {
		fmt.Println(result.Value.GoString())
	}
	return nil
}
