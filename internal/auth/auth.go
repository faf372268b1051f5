// Package auth acquires a GitHub token from the gh CLI.
//
// Token resolution asks the installed gh CLI for the active token rather
// than reading credential files directly, so whatever account the user has
// authenticated with gh is the one used here. Callers that already hold a
// token (flag or environment) skip this package entirely.
package auth

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrCLINotFound indicates the gh binary is not installed or not on
	// PATH.
	ErrCLINotFound = errors.New("auth: gh CLI not found")

	// ErrNotAuthenticated indicates gh is installed but holds no usable
	// token.
	ErrNotAuthenticated = errors.New("auth: not authenticated with gh CLI")
)

// CommandRunner abstracts external command execution so tests can supply
// canned outputs.
type CommandRunner interface {
	Run(program string, args ...string) (stdout []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(program string, args ...string) ([]byte, error) {
	return exec.Command(program, args...).Output()
}

// Token retrieves the current GitHub token via "gh auth token". A missing
// gh binary, a non-zero exit, and an empty token are reported as distinct
// failures so the CLI can print an actionable message.
func Token(runner CommandRunner) (string, error) {
	stdout, err := runner.Run("gh", "auth", "token")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrCLINotFound
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("run gh auth token: %w", err)
	}

	token := strings.TrimSpace(string(stdout))
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}
