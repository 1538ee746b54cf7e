package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/bbejeck/confluent-cli-plugins/internal/purge"
)

// printer writes the coloured progress lines every plugin uses.
type printer struct {
	w       io.Writer
	info    *color.Color
	success *color.Color
	warn    *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:       w,
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
	}
}

func (p *printer) Info(format string, args ...any) {
	p.info.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Success(format string, args ...any) {
	p.success.Fprintf(p.w, "✓ "+format+"\n", args...)
}

func (p *printer) Warn(format string, args ...any) {
	p.warn.Fprintf(p.w, "⚠ "+format+"\n", args...)
}

func (p *printer) Plain(text string) {
	fmt.Fprintln(p.w, strings.TrimRight(text, "\n"))
}

// stepReporter prints purge progress, announcing each stage once.
type stepReporter struct {
	out     *printer
	current purge.Stage
	started bool
}

func (r *stepReporter) Deleting(step purge.Step) {
	if !r.started || step.Stage != r.current {
		r.started = true
		r.current = step.Stage
		switch step.Stage {
		case purge.StageSoft:
			r.out.Info("Soft deleting schemas, those with references first")
		case purge.StagePermanent:
			r.out.Info("Now doing a hard delete on all schemas")
		case purge.StageKey:
			r.out.Info("Purging API keys")
		}
	}

	switch step.Stage {
	case purge.StagePermanent:
		r.out.Info("Hard delete for %s (version %s)", step.Subject, step.Version)
	default:
		r.out.Info("Attempting to delete %s", step.Subject)
	}
}

func (r *stepReporter) Deleted(_ purge.Step, message string) {
	if strings.TrimSpace(message) != "" {
		r.out.Plain(message)
	}
}
