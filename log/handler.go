package log

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

type discardHandler struct{}

// DiscardHandler returns a handler that drops every record.
func DiscardHandler() slog.Handler { return discardHandler{} }

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// TerminalHandler formats records for a human reading a terminal:
//
//	INFO [05-16|20:58:45.123] Toolchain installed          version=v0.87.2 platform=amd64-linux
//
// Messages are padded so the context of short messages lines up, and each
// key's value is padded to the widest value seen for that key.
// TerminalHandler 以适合终端阅读的格式输出日志。
type TerminalHandler struct {
	lvl      slog.Level
	useColor bool
	attrs    []slog.Attr

	mu      *sync.Mutex // shared with handlers derived by WithAttrs
	wr      io.Writer
	padding map[string]int
	buf     []byte
}

// NewTerminalHandler returns a terminal handler emitting every level.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewTerminalHandlerWithLevel(wr, LevelTrace, useColor)
}

// NewTerminalHandlerWithLevel returns a terminal handler emitting records at
// lvl or above.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Level, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		lvl:      lvl,
		useColor: useColor,
		mu:       new(sync.Mutex),
		wr:       wr,
		padding:  make(map[string]int),
	}
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf = h.format(h.buf[:0], r)
	_, err := h.wr.Write(h.buf)
	return err
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		lvl:      h.lvl,
		useColor: h.useColor,
		attrs:    append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
		mu:       h.mu,
		wr:       h.wr,
		padding:  make(map[string]int),
	}
}

// WithGroup is not supported, attributes stay flat.
func (h *TerminalHandler) WithGroup(string) slog.Handler { return h }

type leveler slog.Level

func (l leveler) Level() slog.Level { return slog.Level(l) }

// JSONHandler returns a handler printing every record as a JSON object.
func JSONHandler(wr io.Writer) slog.Handler {
	return JSONHandlerWithLevel(wr, LevelTrace)
}

// JSONHandlerWithLevel returns a JSON handler emitting records at level or
// above.
func JSONHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		Level:       leveler(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr { return replaceAttr(a, false) },
	})
}

// LogfmtHandlerWithLevel returns a logfmt handler emitting records at level
// or above.
func LogfmtHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		Level:       leveler(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr { return replaceAttr(a, true) },
	})
}

// replaceAttr renames the builtin time and level keys to t and lvl and
// renders durations and stringers as text.
func replaceAttr(a slog.Attr, logfmt bool) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if a.Value.Kind() != slog.KindTime {
			return a
		}
		if logfmt {
			return slog.String("t", a.Value.Time().Format(timeFormat))
		}
		return slog.Attr{Key: "t", Value: a.Value}
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			return slog.String("lvl", LevelString(l))
		}
		return a
	}
	switch a.Value.Kind() {
	case slog.KindDuration:
		return slog.String(a.Key, a.Value.Duration().String())
	case slog.KindTime:
		if logfmt {
			return slog.String(a.Key, a.Value.Time().Format(timeFormat))
		}
	case slog.KindAny:
		if s, ok := stringer(a.Value.Any()); ok {
			return slog.String(a.Key, s)
		}
	}
	return a
}

