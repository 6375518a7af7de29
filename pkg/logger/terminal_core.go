package logger

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TerminalPrefix marks log messages meant for the operator rather than the log stream.
const TerminalPrefix = "terminal prompt:"

// outputField is printed verbatim below the message; other fields follow as "key: value".
const outputField = "output"

// operatorCore diverts TerminalPrefix entries to out as plain text and hands
// everything else to base.
type operatorCore struct {
	base zapcore.Core
	out  io.Writer
}

func newTerminalConsoleCore(base zapcore.Core, out io.Writer) zapcore.Core {
	return &operatorCore{base: base, out: out}
}

func isOperatorMessage(msg string) bool {
	return strings.HasPrefix(msg, TerminalPrefix)
}

func (c *operatorCore) Enabled(level zapcore.Level) bool { return c.base.Enabled(level) }

func (c *operatorCore) With(fields []zapcore.Field) zapcore.Core {
	return &operatorCore{base: c.base.With(fields), out: c.out}
}

func (c *operatorCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !isOperatorMessage(entry.Message) {
		return c.base.Check(entry, ce)
	}
	return ce.AddCore(entry, c)
}

func (c *operatorCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if !isOperatorMessage(entry.Message) {
		return c.base.Write(entry, fields)
	}
	_, err := io.WriteString(c.out, render(entry.Message, fields))
	return err
}

func (c *operatorCore) Sync() error { return c.base.Sync() }

func render(message string, fields []zapcore.Field) string {
	var b strings.Builder
	if text := strings.TrimSpace(strings.TrimPrefix(message, TerminalPrefix)); text != "" {
		b.WriteString(text)
		b.WriteByte('\n')
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	if v, ok := enc.Fields[outputField]; ok {
		b.WriteString(strings.TrimRight(fmt.Sprint(v), "\n"))
		b.WriteByte('\n')
		delete(enc.Fields, outputField)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, enc.Fields[k])
	}

	if b.Len() == 0 {
		return "\n"
	}
	return b.String()
}
