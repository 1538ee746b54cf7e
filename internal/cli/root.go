// Package cli defines the cobra commands behind each plugin binary.
//
// Every plugin is its own root command with the shared persistent flags
// (--debug, --cli-path, --log-file) and the version and config
// subcommands. External dependencies are reached through Env so tests can
// substitute the runner, prompter and filesystem.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bbejeck/confluent-cli-plugins/internal/config"
	"github.com/bbejeck/confluent-cli-plugins/internal/logging"
	"github.com/bbejeck/confluent-cli-plugins/internal/plugins"
	"github.com/bbejeck/confluent-cli-plugins/internal/prompt"
	"github.com/bbejeck/confluent-cli-plugins/internal/runner"
)

// Env holds the process-level dependencies of a command.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Fs     afero.Fs
	Now    func() time.Time

	Prompter  prompt.Prompter
	NewRunner func(cfg *config.Config, logger *slog.Logger, debug io.Writer) runner.Runner
	NewGitHub func(ctx context.Context, cfg *config.Config) *plugins.Client
}

// DefaultEnv wires the real terminal, filesystem and confluent binary.
func DefaultEnv() *Env {
	return &Env{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Fs:       afero.NewOsFs(),
		Now:      time.Now,
		Prompter: prompt.Default(os.Stdin, os.Stdout),
		NewRunner: func(cfg *config.Config, logger *slog.Logger, debug io.Writer) runner.Runner {
			r := runner.New(cfg.CLIPath, logger)
			if cfg.Debug {
				r.Debug = debug
			}
			return r
		},
		NewGitHub: func(ctx context.Context, cfg *config.Config) *plugins.Client {
			return plugins.NewClient(ctx, cfg.Plugins.Token, cfg.Plugins.RepoURL)
		},
	}
}

// ValidationError reports invalid flag combinations.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by Execute to the process exit status.
// External CLI failures keep the tool's own status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

// session is the per-invocation state derived from configuration.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
	runner runner.Runner
	out    *printer
}

func (e *Env) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, closer := logging.New(e.Stderr, cfg.LogFile, cfg.Debug)
	out := newPrinter(cmd.OutOrStdout())
	return &session{
		cfg:    cfg,
		logger: logger,
		closer: closer,
		runner: e.NewRunner(cfg, logger, cmd.OutOrStdout()),
		out:    out,
	}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}

func newPluginCommand(env *Env, cmd *cobra.Command) *cobra.Command {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.Args = cobra.NoArgs
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	cmd.PersistentFlags().Bool("debug", false, "Prints the results of every command")
	cmd.PersistentFlags().String("cli-path", "", "Path to the confluent CLI binary")
	cmd.PersistentFlags().String("log-file", "", "Write a debug log of every external call to this file")
	cobra.CheckErr(config.BindFlags(cmd.PersistentFlags(), "debug", "cli-path", "log-file"))

	cmd.AddCommand(newVersionCmd(), newConfigCmd())
	return cmd
}

// Execute runs cmd and prints any failure the way the user expects:
// the external tool's stderr verbatim, otherwise the error message.
func Execute(cmd *cobra.Command, version string) error {
	cmd.Version = version

	err := cmd.Execute()
	if err == nil {
		return nil
	}

	var exitErr *runner.ExitError
	var apiErr *plugins.APIError
	switch {
	case errors.As(err, &exitErr):
		fmt.Fprintln(cmd.ErrOrStderr(), strings.TrimRight(exitErr.Stderr, "\n"))
	case errors.As(err, &apiErr):
		fmt.Fprintln(cmd.ErrOrStderr(), apiErr.Error())
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("✗ %v", err))
	}
	return err
}
