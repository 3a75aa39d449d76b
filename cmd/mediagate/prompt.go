package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

var stdin = bufio.NewReader(os.Stdin)

// reads one line, echoing input
func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label) //nolint:errcheck

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// reads a secret without echo on terminals; piped input is read as a line
func promptPassword(label string) (string, error) {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return prompt(label)
	}

	fmt.Fprint(os.Stderr, label) //nolint:errcheck

	secret, err := term.ReadPassword(os.Stdin.Fd())
	fmt.Fprintln(os.Stderr) //nolint:errcheck

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(secret), nil
}

// returns value, or prompts for it when empty
func flagOrPrompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}

	return prompt(label)
}
