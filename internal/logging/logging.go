// Package logging builds the structured logger used to trace external calls.
package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger for the plugins. With a file, debug-level JSON records
// go to a size-rotated log; with debug alone, text records go to stderr.
// Otherwise only warnings reach stderr.
func New(stderr io.Writer, file string, debug bool) (*slog.Logger, io.Closer) {
	if file != "" {
		writer := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			Compress:   true,
		}
		return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelDebug})), writer
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})), nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
