package slogutil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"polylint/internal/config"
)

// LoggerFactory builds the CLI logger from configuration and flags.
// Precedence for the level: CLI flag > logging.level > warn.
type LoggerFactory struct {
	repoRoot string
	config   *config.Config
	cliLevel *slog.Level
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory.
func NewLoggerFactory(repoRoot string, cfg *config.Config) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		repoRoot: repoRoot,
		config:   cfg,
	}
}

// SetCLILevel records a level chosen on the command line.
func (f *LoggerFactory) SetCLILevel(level slog.Level) {
	f.cliLevel = &level
}

// EffectiveLevel returns the level the stderr handler logs at.
func (f *LoggerFactory) EffectiveLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelWarn
}

// CLILogger returns a logger writing to stderr and, when logging.file is
// set, also to that file. The file always receives at least info records.
// A log file that cannot be opened is reported on the returned logger and
// otherwise ignored.
func (f *LoggerFactory) CLILogger(stderr io.Writer) *slog.Logger {
	level := f.EffectiveLevel()
	format := f.config.Logging.Format
	console := NewFormatHandler(stderr, level, format)

	path := f.config.Logging.File
	if path == "" {
		return slog.New(console)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.repoRoot, path)
	}

	w, err := OpenLogFile(path, f.config.Logging.MaxSize, f.config.Logging.MaxBackups)
	if err != nil {
		logger := slog.New(console)
		logger.Warn("Cannot open log file", "path", path, "error", err)
		return logger
	}
	f.closers = append(f.closers, w)

	fileLevel := level
	if fileLevel > slog.LevelInfo {
		fileLevel = slog.LevelInfo
	}
	return NewTeeLogger(console, NewFormatHandler(w, fileLevel, format))
}

// NewTeeLogger returns a logger that sends each record to every handler
// enabled for its level.
func NewTeeLogger(handlers ...slog.Handler) *slog.Logger {
	return slog.New(fanout(handlers))
}

// fanout is the handler behind NewTeeLogger.
type fanout []slog.Handler

func (fo fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range fo {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes each handler its own copy of r and joins their errors.
func (fo fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range fo {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (fo fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fo.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (fo fanout) WithGroup(name string) slog.Handler {
	return fo.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (fo fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	next := make(fanout, len(fo))
	for i, h := range fo {
		next[i] = fn(h)
	}
	return next
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
