// Package runner invokes the external confluent CLI.
//
// Every plugin goes through a single Runner so that the exit-code,
// stderr and debug-echo handling lives in one place. A successful run
// returns the captured stdout; a failed run returns an *ExitError
// carrying the external tool's status code verbatim.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultBinary is the CLI invoked when no path is configured.
const DefaultBinary = "confluent"

// ErrBinaryNotFound is returned when the CLI binary cannot be started.
var ErrBinaryNotFound = errors.New("confluent CLI binary not available")

// Runner runs one external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExitError reports a non-zero exit status from the external CLI.
type ExitError struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with exit status %d: %s",
		strings.Join(Redact(e.Args), " "), e.Code, strings.TrimSpace(e.Stderr))
}

// Exec runs the CLI as a subprocess.
type Exec struct {
	Binary string
	Logger *slog.Logger

	// Debug, when non-nil, receives every successful result.
	Debug io.Writer
}

// New returns an Exec runner for binary. An empty binary selects DefaultBinary.
func New(binary string, logger *slog.Logger) *Exec {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Exec{Binary: binary, Logger: logger}
}

// Run blocks until the command exits. There is no timeout and no retry.
func (e *Exec) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.Logger.Debug("running command", "binary", e.Binary, "args", strings.Join(Redact(args), " "))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.Logger.Debug("command failed", "code", exitErr.ExitCode(), "stderr", stderr.String())
			return nil, &ExitError{
				Args:   append([]string{e.Binary}, args...),
				Code:   exitErr.ExitCode(),
				Stderr: stderr.String(),
			}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBinaryNotFound, e.Binary)
		}
		return nil, fmt.Errorf("%s %s: %w", e.Binary, strings.Join(Redact(args), " "), err)
	}

	if e.Debug != nil {
		fmt.Fprintf(e.Debug, "Debug: %s\n", strings.TrimSpace(stdout.String()))
	}
	e.Logger.Debug("command succeeded", "bytes", stdout.Len())

	return stdout.Bytes(), nil
}

// RunJSON runs args and decodes stdout into v.
func RunJSON(ctx context.Context, r Runner, v any, args ...string) error {
	out, err := r.Run(ctx, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("failed to parse output of %s: %w", strings.Join(Redact(args), " "), err)
	}
	return nil
}

// RunText runs args and returns stdout as a string.
func RunText(ctx context.Context, r Runner, args ...string) (string, error) {
	out, err := r.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var secretFlags = map[string]bool{
	"--api-secret":                 true,
	"--schema-registry-api-secret": true,
}

// Redact returns a copy of args with the values of secret flags masked.
func Redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if secretFlags[out[i]] {
			out[i+1] = "********"
			i++
		}
	}
	return out
}
