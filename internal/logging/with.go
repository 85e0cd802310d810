package logging

import "github.com/arloliu/wukong/types"

// fieldLogger prepends fixed key/value pairs to every message.
type fieldLogger struct {
	next   types.Logger
	fields []any
}

// With returns a logger adding keysAndValues in front of the pairs of every
// message logged through l. A nil l is treated as Nop, and a Nop logger is
// returned unchanged.
//
// Parameters:
//   - l: The logger to wrap
//   - keysAndValues: Alternating keys and values, e.g. "source", "zookeeper"
//
// Returns:
//   - types.Logger: The wrapping logger
func With(l types.Logger, keysAndValues ...any) types.Logger {
	l = OrNop(l)
	if _, ok := l.(Nop); ok || len(keysAndValues) == 0 {
		return l
	}

	if f, ok := l.(*fieldLogger); ok {
		return &fieldLogger{next: f.next, fields: append(f.merge(nil), keysAndValues...)}
	}

	return &fieldLogger{next: l, fields: append([]any(nil), keysAndValues...)}
}

func (f *fieldLogger) merge(keysAndValues []any) []any {
	out := make([]any, 0, len(f.fields)+len(keysAndValues))
	out = append(out, f.fields...)

	return append(out, keysAndValues...)
}

func (f *fieldLogger) Debug(msg string, keysAndValues ...any) {
	f.next.Debug(msg, f.merge(keysAndValues)...)
}

func (f *fieldLogger) Info(msg string, keysAndValues ...any) {
	f.next.Info(msg, f.merge(keysAndValues)...)
}

func (f *fieldLogger) Warn(msg string, keysAndValues ...any) {
	f.next.Warn(msg, f.merge(keysAndValues)...)
}

func (f *fieldLogger) Error(msg string, keysAndValues ...any) {
	f.next.Error(msg, f.merge(keysAndValues)...)
}
