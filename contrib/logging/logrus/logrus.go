// Package logrus adapts a logrus logger to types.Logger.
//
//	log := logrus.New()
//	log.SetLevel(logrus.DebugLevel)
//
//	router, _ := wukong.NewRouter(addrs, wukong.WithLogger(wlogrus.New(log)))
//
// Key/value pairs become logrus fields. A trailing key without value is
// logged under the "!BADKEY" field, as log/slog does.
package logrus

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/wukong/types"
)

const badKey = "!BADKEY"

// Logger implements types.Logger on top of a logrus entry.
type Logger struct {
	entry *logrus.Entry
}

var _ types.Logger = (*Logger)(nil)

// New wraps a logrus logger.
//
// Parameters:
//   - l: The logrus logger; nil uses logrus.StandardLogger()
//
// Returns:
//   - *Logger: The adapter
func New(l *logrus.Logger) *Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}

	return &Logger{entry: logrus.NewEntry(l)}
}

// NewFromEntry wraps a logrus entry, keeping its fields.
func NewFromEntry(e *logrus.Entry) *Logger {
	return &Logger{entry: e}
}

// With returns a logger that adds keysAndValues to every message.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{entry: l.entry.WithFields(fields(keysAndValues))}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.entry.WithFields(fields(keysAndValues)).Info(msg)
}

// Warn logs at warning level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.entry.WithFields(fields(keysAndValues)).Warn(msg)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.entry.WithFields(fields(keysAndValues)).Error(msg)
}

func fields(keysAndValues []any) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 == len(keysAndValues) {
			f[badKey] = keysAndValues[i]
			break
		}

		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		f[key] = keysAndValues[i+1]
	}

	return f
}
