// Where: internal/app/prompter.go
// What: Interactive confirmation prompts.
// Why: Creation commands ask before touching settings; tests inject a fake.
package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Prompter defines the interface for interactive user confirmation.
type Prompter interface {
	Confirm(title string) (bool, error)
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// HuhPrompter implements Prompter using the huh TUI library, falling
// back to a plain line prompt when stdin is not a terminal.
type HuhPrompter struct{}

func (p HuhPrompter) Confirm(title string) (bool, error) {
	if !IsTerminal(os.Stdin) {
		return PromptYesNoWithIO(os.Stdin, os.Stderr, title)
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// PromptYesNoWithIO prints a confirmation prompt to out and reads the
// answer from in.
func PromptYesNoWithIO(in io.Reader, out io.Writer, message string) (bool, error) {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	reader := bufio.NewReader(in)
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", message)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	trimmed := strings.TrimSpace(strings.ToLower(line))
	return trimmed == "y" || trimmed == "yes", nil
}
