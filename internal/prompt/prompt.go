// Package prompt asks the user for confirmation and input.
//
// Commands depend on the Confirmer and Prompter interfaces only, so tests
// can script the answers. On a terminal the huh form widgets are used;
// otherwise answers are read line by line.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Prompter asks yes/no questions and free-form questions.
type Prompter interface {
	Confirmer
	Input(ctx context.Context, message string) (string, error)
}

// Line reads answers one line at a time. Only "y" or "yes" confirm.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine returns a Line prompter reading from in and writing to out.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

func (l *Line) Confirm(ctx context.Context, message string) (bool, error) {
	answer, err := l.Input(ctx, message+" (y/n): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (l *Line) Input(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(l.out, message)

	line, err := l.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Terminal uses interactive huh widgets.
type Terminal struct{}

func (Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func (Terminal) Input(ctx context.Context, message string) (string, error) {
	var answer string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(message).
			Value(&answer),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Default picks Terminal when in is a terminal and Line otherwise.
func Default(in *os.File, out io.Writer) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return Terminal{}
	}
	return NewLine(in, out)
}
