package inputs

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Prompter asks the user for a secret value.
type Prompter interface {
	ReadSecret(prompt string) (string, error)
}

// TerminalPrompter reads secrets from the controlling terminal with
// input echo disabled.
type TerminalPrompter struct{}

// Available reports whether stdin is a terminal the prompter can use.
func (TerminalPrompter) Available() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadSecret prints the prompt to stderr and reads a line with echo off.
func (TerminalPrompter) ReadSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
