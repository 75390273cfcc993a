// Where: internal/app/errors.go
// What: Shared exit helpers for command handlers.
// Why: Keep error output format consistent across commands.
package app

import (
	"fmt"
	"io"
	"strings"
)

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}

func exitWithSuggestion(out io.Writer, message string, suggestions []string) int {
	fmt.Fprintln(out, message)
	if len(suggestions) > 0 {
		fmt.Fprintln(out, "Try:")
		for _, s := range suggestions {
			fmt.Fprintf(out, "  %s\n", s)
		}
	}
	return 1
}

func exitWithSuggestionAndAvailable(out io.Writer, message string, suggestions, available []string) int {
	code := exitWithSuggestion(out, message, suggestions)
	if len(available) > 0 {
		fmt.Fprintf(out, "Available: %s\n", strings.Join(available, ", "))
	}
	return code
}
