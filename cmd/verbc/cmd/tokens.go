package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/verbscript/internal/lexer"
	"github.com/cwbudde/verbscript/internal/token"
)

var (
	tokensEval      string
	tokensShowPos   bool
	tokensOnlyError bool
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Tokenize verbscript source and print the resulting tokens",
	Long: `Tokenize a verbscript program and print the resulting tokens, one
per line. Reads from a file, an inline -e expression, or stdin.

Examples:
  verbc tokens script.vs
  verbc tokens -e "let x = 1 + 2;"
  verbc tokens --show-pos --only-errors script.vs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVarP(&tokensEval, "eval", "e", "", "tokenize inline code instead of reading from a file")
	tokensCmd.Flags().BoolVar(&tokensShowPos, "show-pos", false, "show token positions (line:column)")
	tokensCmd.Flags().BoolVar(&tokensOnlyError, "only-errors", false, "show only illegal tokens")
}

func runTokens(_ *cobra.Command, args []string) error {
	input, _, err := readInput(args, tokensEval)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	errorCount := 0
	for {
		tok := l.Next()
		if tok.Type == token.EOF {
			break
		}
		if tokensOnlyError && tok.Type != token.ILLEGAL {
			continue
		}
		if tok.Type == token.ILLEGAL {
			errorCount++
		}
		printToken(tok)
	}

	if errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok token.Token) {
	out := fmt.Sprintf("[%-14s] %q", tok.Type, tok.Literal)
	if tokensShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
