package log

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	timeFormat     = "2006-01-02T15:04:05-0700"
	termTimeFormat = "01-02|15:04:05.000"
	termMsgJust    = 40 // width the message is padded to when context follows
	termMaxPadding = 40 // values longer than this do not widen the column
)

// TerminalStringer lets a type choose a shorter rendering for the terminal
// handler than its String method.
type TerminalStringer interface {
	TerminalString() string
}

func (h *TerminalHandler) format(buf []byte, r slog.Record) []byte {
	color := ""
	if h.useColor {
		color = levelColor(r.Level)
	}
	name := strings.ToUpper(LevelString(r.Level))
	if len(name) > 5 {
		name = name[:5]
	}
	buf = appendColored(buf, fmt.Sprintf("%-5s", name), color)
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, termTimeFormat)
	buf = append(buf, "] "...)

	msg := escapeMessage(r.Message)
	buf = append(buf, msg...)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	if n := utf8.RuneCountInString(msg); len(attrs) > 0 && n < termMsgJust {
		buf = append(buf, strings.Repeat(" ", termMsgJust-n)...)
	}
	for i, a := range attrs {
		buf = append(buf, ' ')
		buf = appendColored(buf, escapeString(a.Key), color)
		buf = append(buf, '=')

		val := formatValue(a.Value)
		buf = append(buf, val...)

		width := utf8.RuneCountInString(val)
		pad := h.padding[a.Key]
		if width > pad && width <= termMaxPadding {
			pad = width
			h.padding[a.Key] = pad
		}
		if i < len(attrs)-1 && pad > width {
			buf = append(buf, strings.Repeat(" ", pad-width)...)
		}
	}
	return append(buf, '\n')
}

func appendColored(buf []byte, s, color string) []byte {
	if color == "" {
		return append(buf, s...)
	}
	buf = append(buf, color...)
	buf = append(buf, s...)
	return append(buf, "\x1b[0m"...)
}

// formatValue renders a value for the terminal. Integers get thousands
// separators, durations are rounded to milliseconds.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return escapeString(v.String())
	case slog.KindInt64:
		return groupDigits(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return groupDigits(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Format(timeFormat)
	}
	val := v.Any()
	if ts, ok := val.(TerminalStringer); ok && !isNilPointer(val) {
		return escapeString(ts.TerminalString())
	}
	if s, ok := stringer(val); ok {
		return escapeString(s)
	}
	if val == nil {
		return "<nil>"
	}
	return escapeString(fmt.Sprintf("%+v", val))
}

// stringer renders errors and fmt.Stringers, mapping nil pointers to <nil>.
func stringer(v any) (string, bool) {
	switch v := v.(type) {
	case error:
		if isNilPointer(v) {
			return "<nil>", true
		}
		return v.Error(), true
	case fmt.Stringer:
		if isNilPointer(v) {
			return "<nil>", true
		}
		return v.String(), true
	}
	return "", false
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// groupDigits inserts thousands separators into a decimal number of six or
// more digits.
func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	if len(digits) < 6 {
		return s
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// escapeString quotes s if it contains spaces or an equal sign and escapes it
// if it contains control or non-ASCII characters.
func escapeString(s string) string {
	quote := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '=':
			quote = true
		case r <= '"' || r > '~':
			return strconv.Quote(s)
		}
	}
	if quote {
		return `"` + s + `"`
	}
	return s
}

// escapeMessage is escapeString for messages: spaces and line breaks are
// left alone.
func escapeMessage(s string) string {
	for _, r := range s {
		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		if r < ' ' || r > '~' || r == '=' {
			return strconv.Quote(s)
		}
	}
	return s
}
