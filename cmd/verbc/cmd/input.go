package cmd

import (
	"fmt"
	"io"
	"os"
)

// readInput resolves the shared file-arg / -e flag / stdin input pattern
// every subcommand below follows: an inline expression takes priority,
// then a positional file path, then stdin.
func readInput(args []string, inline string) (input, filename string, err error) {
	switch {
	case inline != "":
		return inline, "<eval>", nil
	case len(args) == 1:
		content, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(content), args[0], nil
	default:
		content, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", readErr)
		}
		return string(content), "<stdin>", nil
	}
}
