// SPDX-License-Identifier: LGPL-3.0-or-later

package logger

import (
	"fmt"
	"strings"
)

// TestLogger is a logger that outputs to testing.T/B
type TestLogger struct {
	t interface {
		Logf(format string, args ...interface{})
	}
}

// NewTestLogger creates a logger for tests
func NewTestLogger(t interface {
	Logf(format string, args ...interface{})
}) Logger {
	return &TestLogger{t: t}
}

func (l *TestLogger) format(level, msg string, keysAndValues ...interface{}) string {
	prefix := fmt.Sprintf("[%s] %s", level, msg)

	if len(keysAndValues) > 0 {
		var pairs []string
		for i := 0; i < len(keysAndValues); i += 2 {
			if i+1 < len(keysAndValues) {
				pairs = append(pairs, fmt.Sprintf("%v=%v", keysAndValues[i], keysAndValues[i+1]))
			}
		}
		if len(pairs) > 0 {
			prefix = fmt.Sprintf("%s | %s", prefix, strings.Join(pairs, ", "))
		}
	}

	return prefix
}

func (l *TestLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.t.Logf("%s", l.format("DEBUG", msg, keysAndValues...))
}

func (l *TestLogger) Info(msg string, keysAndValues ...interface{}) {
	l.t.Logf("%s", l.format("INFO", msg, keysAndValues...))
}

func (l *TestLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.t.Logf("%s", l.format("WARN", msg, keysAndValues...))
}

func (l *TestLogger) Error(msg string, keysAndValues ...interface{}) {
	l.t.Logf("%s", l.format("ERROR", msg, keysAndValues...))
}

func (l *TestLogger) With(keysAndValues ...interface{}) Logger {
	return &boundTestLogger{parent: l, kv: keysAndValues}
}

// boundTestLogger carries keysAndValues bound via With into every call.
type boundTestLogger struct {
	parent *TestLogger
	kv     []interface{}
}

func (l *boundTestLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.parent.Debug(msg, append(append([]interface{}{}, l.kv...), keysAndValues...)...)
}

func (l *boundTestLogger) Info(msg string, keysAndValues ...interface{}) {
	l.parent.Info(msg, append(append([]interface{}{}, l.kv...), keysAndValues...)...)
}

func (l *boundTestLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.parent.Warn(msg, append(append([]interface{}{}, l.kv...), keysAndValues...)...)
}

func (l *boundTestLogger) Error(msg string, keysAndValues ...interface{}) {
	l.parent.Error(msg, append(append([]interface{}{}, l.kv...), keysAndValues...)...)
}

func (l *boundTestLogger) With(keysAndValues ...interface{}) Logger {
	return &boundTestLogger{parent: l.parent, kv: append(append([]interface{}{}, l.kv...), keysAndValues...)}
}
