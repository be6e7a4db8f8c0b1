// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// levelRouter is a slog.Handler that routes records below ERROR to out and
// ERROR+ to errOut.
type levelRouter struct {
	level  slog.Leveler
	out    slog.Handler
	errOut slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.errOut.Handle(ctx, r)
	}
	return lr.out.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		out:    lr.out.WithAttrs(attrs),
		errOut: lr.errOut.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		out:    lr.out.WithGroup(name),
		errOut: lr.errOut.WithGroup(name),
	}
}

// ParseLevel maps debug, info, warn and error to slog levels. An empty
// string is INFO.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// NewHandler returns a text handler pair writing records below ERROR to out
// and ERROR+ to errOut.
func NewHandler(out, errOut io.Writer, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	return &levelRouter{
		level:  level,
		out:    slog.NewTextHandler(out, opts),
		errOut: slog.NewTextHandler(errOut, opts),
	}
}

// Setup configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If path is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func Setup(path string, level slog.Level) (func(), error) {
	return setup(os.Stdout, os.Stderr, path, level)
}

// SetupStderr is Setup for command line tools whose stdout carries output:
// every level goes to stderr.
func SetupStderr(path string, level slog.Level) (func(), error) {
	return setup(os.Stderr, os.Stderr, path, level)
}

func setup(out, errOut io.Writer, path string, level slog.Level) (func(), error) {
	cleanup := func() {}

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		out = io.MultiWriter(out, f)
		errOut = io.MultiWriter(errOut, f)
	}

	slog.SetDefault(slog.New(NewHandler(out, errOut, level)))
	return cleanup, nil
}
