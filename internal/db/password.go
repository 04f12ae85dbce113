package db

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/willibrandon/pgrestore/internal/logger"
	"github.com/willibrandon/pgrestore/internal/pgurl"
	"golang.org/x/term"
)

// passwordCommandTimeout bounds how long password_command may run.
const passwordCommandTimeout = 5 * time.Second

// ResolvePassword fills in the descriptor password using the following precedence:
// 1. Password embedded in the connection URL
// 2. Execute password_command if configured
// 3. Prompt interactively if prompt is set
//
// When none apply the descriptor is returned unchanged and the client falls
// back to its own lookup (an inherited PGPASSWORD, ~/.pgpass).
func ResolvePassword(desc pgurl.Descriptor, passwordCommand string, prompt bool) (pgurl.Descriptor, error) {
	if desc.HasPassword {
		return desc, nil
	}

	if passwordCommand != "" {
		password, err := executePasswordCommand(passwordCommand)
		if err != nil {
			return desc, fmt.Errorf("password command failed: %w", err)
		}
		logger.Debug("Password retrieved from password_command")
		desc.Password = password
		desc.HasPassword = true
		return desc, nil
	}

	if prompt {
		password, err := promptForPassword(fmt.Sprintf("Password for %s: ", desc.String()))
		if err != nil {
			return desc, fmt.Errorf("interactive password prompt failed: %w", err)
		}
		desc.Password = password
		desc.HasPassword = true
	}

	return desc, nil
}

// executePasswordCommand executes the configured password command with a 5-second timeout
func executePasswordCommand(command string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), passwordCommandTimeout)
	defer cancel()

	// Split on spaces; quoting is not supported.
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", fmt.Errorf("empty password command")
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("command timed out after 5 seconds")
		}
		return "", fmt.Errorf("command failed: %w (stderr: %s)", err, stderr.String())
	}

	password := strings.TrimSpace(stdout.String())
	if password == "" {
		return "", fmt.Errorf("command returned empty password")
	}

	return password, nil
}

// promptForPassword prompts on stderr and reads a password with echo disabled.
func promptForPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprintln(os.Stderr) // Print newline after password input

	password := string(passwordBytes)
	if password == "" {
		return "", fmt.Errorf("empty password entered")
	}

	return password, nil
}
