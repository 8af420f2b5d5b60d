// Package log is a small leveled, structured logger on top of log/slog.
//
// Records carry key/value context. The package-level functions write to the
// root logger, which discards everything until SetDefault installs a handler.
package log

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"
)

// errorKey is attached when a call passes an odd number of context values.
const errorKey = "LOG_ERROR"

// Levels in addition to the ones slog defines.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

// levels lists the levels from most to least severe. The index is the
// numeric verbosity accepted by --verbosity.
var levels = []struct {
	level slog.Level
	name  string
	color string
}{
	{LevelCrit, "crit", "\x1b[35m"},
	{LevelError, "error", "\x1b[31m"},
	{LevelWarn, "warn", "\x1b[33m"},
	{LevelInfo, "info", "\x1b[32m"},
	{LevelDebug, "debug", "\x1b[36m"},
	{LevelTrace, "trace", "\x1b[34m"},
}

// FromLegacyLevel converts a numeric verbosity, 0 (crit only) to 5 (trace),
// into a slog level. Out of range values are clamped.
// FromLegacyLevel 将数字详细级别转换为 slog 日志级别。
func FromLegacyLevel(verbosity int) slog.Level {
	verbosity = max(0, min(verbosity, len(levels)-1))
	return levels[verbosity].level
}

// LevelString returns the lower case name of a level.
func LevelString(l slog.Level) string {
	for _, lv := range levels {
		if lv.level == l {
			return lv.name
		}
	}
	return "unknown"
}

func levelColor(l slog.Level) string {
	for _, lv := range levels {
		if lv.level == l {
			return lv.color
		}
	}
	return ""
}

// Logger writes key/value records to a slog.Handler.
// Logger 将键值对形式的日志记录写入 slog.Handler。
type Logger interface {
	// With returns a logger that adds ctx to every record.
	With(ctx ...any) Logger
	// New is identical to With.
	New(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	// Crit logs at the crit level and exits the process.
	Crit(msg string, ctx ...any)

	Enabled(level slog.Level) bool
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a logger writing to h.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

// write emits a record. skip is the number of frames between the caller of
// the public logging function and write.
func (l *logger) write(skip int, level slog.Level, msg string, ctx []any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip+2, pcs[:])

	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil, errorKey, "Normalized odd number of arguments by adding nil")
	}
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(ctx...)
	l.inner.Handler().Handle(context.Background(), r)
}

func (l *logger) With(ctx ...any) Logger { return &logger{l.inner.With(ctx...)} }
func (l *logger) New(ctx ...any) Logger  { return l.With(ctx...) }

func (l *logger) Trace(msg string, ctx ...any) { l.write(1, LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(1, LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(1, LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(1, LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(1, LevelError, msg, ctx) }

func (l *logger) Crit(msg string, ctx ...any) {
	l.write(1, LevelCrit, msg, ctx)
	os.Exit(1)
}

func (l *logger) Enabled(level slog.Level) bool {
	return l.inner.Enabled(context.Background(), level)
}

func (l *logger) Handler() slog.Handler { return l.inner.Handler() }

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault replaces the root logger. Loggers not created by NewLogger are
// wrapped around their handler.
// SetDefault 设置默认的全局日志记录器。
func SetDefault(l Logger) {
	lg, ok := l.(*logger)
	if !ok {
		lg = &logger{slog.New(l.Handler())}
	}
	root.Store(lg)
	slog.SetDefault(lg.inner)
}

// Root returns the root logger.
func Root() Logger { return root.Load() }

// New returns a child of the root logger with the given context.
func New(ctx ...any) Logger { return root.Load().With(ctx...) }

// The package-level functions call write directly so that the recorded
// source location is the caller's in both paths.

func Trace(msg string, ctx ...any) { root.Load().write(1, LevelTrace, msg, ctx) }
func Debug(msg string, ctx ...any) { root.Load().write(1, LevelDebug, msg, ctx) }
func Info(msg string, ctx ...any)  { root.Load().write(1, LevelInfo, msg, ctx) }
func Warn(msg string, ctx ...any)  { root.Load().write(1, LevelWarn, msg, ctx) }
func Error(msg string, ctx ...any) { root.Load().write(1, LevelError, msg, ctx) }

// Crit logs at the crit level and exits the process.
func Crit(msg string, ctx ...any) {
	root.Load().write(1, LevelCrit, msg, ctx)
	os.Exit(1)
}
